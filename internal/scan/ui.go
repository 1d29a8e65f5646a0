package scan

import "html/template"

// Trigger captions and the empty-input alert.
const (
	CaptionIdle     = "Check Trust"
	CaptionWorking  = "Scanning..."
	AlertEmptyInput = "Please paste a link first!"
)

// Input yields the current value of the link field at call time.
type Input interface {
	Value() string
}

// InputFunc adapts a function to Input.
type InputFunc func() string

func (f InputFunc) Value() string { return f() }

// StaticInput is an Input with a fixed value.
type StaticInput string

func (s StaticInput) Value() string { return string(s) }

// Panel is the result area the orchestrator writes into.
type Panel interface {
	Show()
	SetClass(class string)
	SetContent(html template.HTML)
}

// Trigger is the control that starts a scan.
type Trigger interface {
	Disable(caption string)
	Enable(caption string)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(msg string)
}

// UI bundles the collaborators one orchestrator drives.
type UI struct {
	Input    Input
	Panel    Panel
	Trigger  Trigger
	Notifier Notifier
}
