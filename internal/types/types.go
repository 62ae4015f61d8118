package types

import (
	"fmt"
	"go/token"
)

// Severity is how serious an issue is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// Issue is a problem found while rewriting a file, positioned in the source.
// It is also the error returned when a file cannot be rewritten.
type Issue struct {
	Rule       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Severity   Severity
	// Err is the failure the issue reports, if any.
	Err error
}

func (i Issue) Error() string {
	pos := i.Start
	if pos.Filename == "" {
		pos.Filename = i.Filename
	}
	return fmt.Sprintf("%s: %s: %s", pos, i.Rule, i.Message)
}

func (i Issue) Unwrap() error { return i.Err }
