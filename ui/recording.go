package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Entry records a single UI method call for test assertions.
type Entry struct {
	Method string
	Value  string
}

// RecordingUI implements UI for tests.
//
// Output is captured in an entry log inspected with [RecordingUI.Entries],
// [RecordingUI.Lines] and [RecordingUI.HasMessage]. Confirm answers come from
// the scripted inputs given to [NewRecordingUI]; running out of them panics
// so a wrong test script fails loudly.
type RecordingUI struct {
	mu      sync.Mutex
	entries []Entry
	inputs  []string
	nextIdx int
	buf     bytes.Buffer
}

func NewRecordingUI(scriptedInputs ...string) *RecordingUI {
	return &RecordingUI{inputs: scriptedInputs}
}

func (r *RecordingUI) record(method, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Method: method, Value: value})
}

// Style returns the plain text; RecordingUI never colours.
func (r *RecordingUI) Style(t StyledText) string {
	return t.Text
}

func (r *RecordingUI) Info(format string, args ...any) {
	r.record("Info", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Success(format string, args ...any) {
	r.record("Success", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Warn(format string, args ...any) {
	r.record("Warn", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Error(format string, args ...any) {
	r.record("Error", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Critical(format string, args ...any) {
	r.record("Critical", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Section(title string) {
	r.record("Section", title)
}

func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, line := range keyValueLines(rows) {
		r.record("KeyValue", line)
	}
}

// Table records each row as " | " joined cells.
func (r *RecordingUI) Table(headers []string, rows [][]string) {
	if len(headers) > 0 {
		r.record("Table", strings.Join(headers, " | "))
	}
	for _, row := range rows {
		r.record("Table", strings.Join(row, " | "))
	}
}

func (r *RecordingUI) Spinner(msg string) func() {
	r.record("Spinner", msg)
	return func() {}
}

// Confirm returns the next scripted input as a boolean: "y"/"yes" is true,
// "n"/"no" false and "" takes defaultYes.
func (r *RecordingUI) Confirm(prompt string, defaultYes bool) bool {
	r.record("Confirm", prompt)

	r.mu.Lock()
	if r.nextIdx >= len(r.inputs) {
		r.mu.Unlock()
		panic(fmt.Sprintf("RecordingUI: no scripted input left for Confirm(%q)", prompt))
	}
	input := strings.ToLower(strings.TrimSpace(r.inputs[r.nextIdx]))
	r.nextIdx++
	r.mu.Unlock()

	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

func (r *RecordingUI) Writer() io.Writer {
	return &r.buf
}

// --- Test helpers ---

func (r *RecordingUI) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Lines returns the values of every reply call (Info, Success, Warn, Error,
// Critical) in order, which is what a chat user would have seen.
func (r *RecordingUI) Lines() []string {
	var out []string
	for _, e := range r.Entries() {
		switch e.Method {
		case "Info", "Success", "Warn", "Error", "Critical":
			out = append(out, e.Value)
		}
	}
	return out
}

func (r *RecordingUI) InfoMessages() []string {
	return r.methodValues("Info")
}

func (r *RecordingUI) ErrorMessages() []string {
	return r.methodValues("Error")
}

func (r *RecordingUI) WarnMessages() []string {
	return r.methodValues("Warn")
}

// HasMessage reports whether any recorded value contains substr, ignoring
// case.
func (r *RecordingUI) HasMessage(substr string) bool {
	lower := strings.ToLower(substr)
	for _, e := range r.Entries() {
		if strings.Contains(strings.ToLower(e.Value), lower) {
			return true
		}
	}
	return false
}

func (r *RecordingUI) Output() string {
	return r.buf.String()
}

func (r *RecordingUI) methodValues(method string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Method == method {
			out = append(out, e.Value)
		}
	}
	return out
}
