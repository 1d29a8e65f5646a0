package scan

import (
	"html/template"
	"strings"
)

// Panel classes consumed by the page stylesheet.
const (
	ClassNeutral = ""
	ClassSafe    = "safe"
	ClassScam    = "scam"
)

// Verdict tokens the trust engine embeds in its verdict string.
const (
	TokenSafe       = "SAFE"
	TokenSuspicious = "SUSPICIOUS"
	TokenHighRisk   = "HIGH RISK"
)

// Accent colors.
const (
	AccentSafe       template.CSS = "#3fb950"
	AccentSuspicious template.CSS = "#d29922"
	AccentHighRisk   template.CSS = "#f85149"
)

const (
	IconSafe    = "✅"
	IconWarning = "⚠️"
)

// Level is the coarse reading of a verdict string.
type Level int

const (
	LevelUnknown Level = iota
	LevelSafe
	LevelSuspicious
	LevelHighRisk
)

func (l Level) String() string {
	switch l {
	case LevelSafe:
		return "safe"
	case LevelSuspicious:
		return "suspicious"
	case LevelHighRisk:
		return "high-risk"
	default:
		return "unknown"
	}
}

// Classification is how a verdict is presented.
type Classification struct {
	Level  Level
	Class  string
	Accent template.CSS
	Icon   string
}

// Safe reports whether the panel gets the success class.
func (c Classification) Safe() bool { return c.Class == ClassSafe }

// Classify maps a verdict to its presentation using exact, case-sensitive
// substring checks. The accent starts green and is overridden by
// SUSPICIOUS, then by HIGH RISK; the class and icon depend on SAFE alone.
func Classify(verdict string) Classification {
	c := Classification{
		Level:  LevelUnknown,
		Class:  ClassScam,
		Accent: AccentSafe,
		Icon:   IconWarning,
	}
	if strings.Contains(verdict, TokenSafe) {
		c.Level = LevelSafe
		c.Class = ClassSafe
		c.Icon = IconSafe
	}
	if strings.Contains(verdict, TokenSuspicious) {
		c.Level = LevelSuspicious
		c.Accent = AccentSuspicious
	}
	if strings.Contains(verdict, TokenHighRisk) {
		c.Level = LevelHighRisk
		c.Accent = AccentHighRisk
	}
	return c
}
