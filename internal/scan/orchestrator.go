package scan

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raysh454/ziva/internal/logging"
)

var (
	// ErrEmptyInput is returned when the link field is blank. No request is sent.
	ErrEmptyInput = errors.New("scan: empty input")

	// ErrScanInFlight is returned when Run is called while a scan is pending.
	// The UI is left untouched.
	ErrScanInFlight = errors.New("scan: a scan is already in flight")
)

// Config tunes an Orchestrator.
type Config struct {
	// Timeout bounds the remote call. Zero disables the deadline.
	Timeout time.Duration `yaml:"timeout"`

	// Locale drives price digit grouping, e.g. "en" or "en-IN".
	Locale string `yaml:"locale"`
}

// DefaultConfig returns a one minute timeout and English formatting.
func DefaultConfig() Config {
	return Config{Timeout: 60 * time.Second, Locale: "en"}
}

// Orchestrator runs one scan at a time against a Client and reflects every
// phase on a UI: loading state, rendered verdict, or failure message.
type Orchestrator struct {
	client   Client
	ui       UI
	renderer *Renderer
	timeout  time.Duration
	logger   logging.Logger

	inFlight atomic.Bool
	seq      atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewOrchestrator wires a client to a UI. Every UI member is required.
func NewOrchestrator(cfg Config, client Client, ui UI, logger logging.Logger) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("scan: nil client")
	}
	if ui.Input == nil || ui.Panel == nil || ui.Trigger == nil || ui.Notifier == nil {
		return nil, errors.New("scan: incomplete UI")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		client:   client,
		ui:       ui,
		renderer: NewRenderer(cfg.Locale),
		timeout:  cfg.Timeout,
		logger:   logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
	}, nil
}

// InFlight reports whether a scan is pending.
func (o *Orchestrator) InFlight() bool { return o.inFlight.Load() }

// Cancel aborts the pending scan, if any. The scan then fails with the
// canceled message.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}

// Run performs one scan of the current input value.
//
// Blank input raises an alert and returns ErrEmptyInput. Otherwise the panel
// switches to the loading state and the trigger is disabled before the
// request is sent; whatever happens next, the trigger is re-enabled exactly
// once before Run returns. Any failure of the call, the decoding or the
// rendering is logged and shown as a generic failure (or the timeout
// message), and returned.
func (o *Orchestrator) Run(ctx context.Context) (*ScanResponse, error) {
	link := o.ui.Input.Value()
	if strings.TrimSpace(link) == "" {
		o.ui.Notifier.Alert(AlertEmptyInput)
		return nil, ErrEmptyInput
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Warn("scan rejected: another scan is in flight", logging.Field{Key: "url", Value: link})
		return nil, ErrScanInFlight
	}
	defer o.inFlight.Store(false)

	seq := o.seq.Add(1)
	log := o.logger.With(logging.Field{Key: "seq", Value: seq})

	o.ui.Panel.Show()
	o.ui.Panel.SetClass(ClassNeutral)
	o.ui.Panel.SetContent(LoadingMessage)
	o.ui.Trigger.Disable(CaptionWorking)
	defer o.ui.Trigger.Enable(CaptionIdle)

	ctx, cancel := o.withDeadline(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.cancel = nil
		o.mu.Unlock()
		cancel()
	}()

	log.Info("scan started", logging.Field{Key: "url", Value: link})
	started := time.Now()

	resp, err := o.client.Scan(ctx, &ScanRequest{URL: link})
	if err != nil {
		o.fail(log, err)
		return nil, err
	}

	rendered, err := o.renderer.Render(resp)
	if err != nil {
		o.fail(log, err)
		return nil, fmt.Errorf("render scan response: %w", err)
	}

	o.ui.Panel.SetClass(rendered.Class)
	o.ui.Panel.SetContent(rendered.HTML)

	log.Info("scan finished",
		logging.Field{Key: "verdict", Value: resp.Verdict},
		logging.Field{Key: "level", Value: rendered.Level.String()},
		logging.Field{Key: "elapsed", Value: time.Since(started).String()})
	return resp, nil
}

func (o *Orchestrator) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(ctx, o.timeout)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) fail(log logging.Logger, err error) {
	log.Error("scan failed", logging.Field{Key: "error", Value: err.Error()})
	o.ui.Panel.SetClass(ClassScam)
	o.ui.Panel.SetContent(FailureContent(err))
}

// FailureContent picks the panel message for a failed scan.
func FailureContent(err error) template.HTML {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutMessage
	case errors.Is(err, context.Canceled):
		return CanceledMessage
	default:
		return FailureMessage
	}
}
