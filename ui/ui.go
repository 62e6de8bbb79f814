package ui

import (
	"encoding/json"
	"io"
)

// Severity classifies the visual weight of a reply. Terminals map it to a
// colour; chat and webhook consumers see plain text.
type Severity uint8

const (
	SeverityInfo     Severity = iota // plain
	SeveritySuccess                  // green
	SeverityWarn                     // yellow
	SeverityError                    // red
	SeverityCritical                 // bold
)

// StyledText pairs a plain string with a Severity annotation. It marshals
// as the plain string.
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI is the surface the bot replies on.
//
// Every reply is one line. Hosts decide where it goes:
//   - TerminalUI prints to stdout (the hear and direct CLI commands)
//   - LinesUI collects plain lines (the webhook response body)
//   - RecordingUI keeps a log of calls (tests)
type UI interface {
	// Style returns t coloured by its Severity, or the plain text when
	// colours are off.
	Style(t StyledText) string

	// Info writes a neutral reply.
	Info(format string, args ...any)

	// Success writes a positive outcome, e.g. a dispatched transfer.
	Success(format string, args ...any)

	// Warn writes a refusal or something the user should retry later.
	Warn(format string, args ...any)

	// Error writes a failure. It doesn't exit or return anything.
	Error(format string, args ...any)

	// Critical writes data the user must review before an irreversible
	// action, such as the transfer about to be sent.
	Critical(format string, args ...any)

	// Section writes a separator centred around title.
	Section(title string)

	// KeyValue renders an aligned 2-column block.
	KeyValue(rows [][2]string)

	// Table renders a header row followed by data rows.
	Table(headers []string, rows [][]string)

	// Spinner starts an activity indicator for a slow call and returns the
	// function that stops it. Non-terminal UIs return a no-op.
	//
	//   stop := u.Spinner("asking the explorer...")
	//   defer stop()
	Spinner(msg string) func()

	// Confirm asks a yes/no question. UIs without a reader return
	// defaultYes.
	Confirm(prompt string, defaultYes bool) bool

	// Writer exposes the underlying output for callers that take an
	// io.Writer.
	Writer() io.Writer
}
