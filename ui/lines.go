package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// LinesUI collects replies as plain lines, in order. The webhook server
// hands one to the router per request and returns Lines() as the body.
type LinesUI struct {
	mu    sync.Mutex
	lines []string
	buf   bytes.Buffer
}

func NewLinesUI() *LinesUI {
	return &LinesUI{}
}

func (l *LinesUI) add(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

func (l *LinesUI) Style(t StyledText) string {
	return t.Text
}

func (l *LinesUI) Info(format string, args ...any) {
	l.add(fmt.Sprintf(format, args...))
}

func (l *LinesUI) Success(format string, args ...any) {
	l.add(fmt.Sprintf(format, args...))
}

func (l *LinesUI) Warn(format string, args ...any) {
	l.add(fmt.Sprintf(format, args...))
}

func (l *LinesUI) Error(format string, args ...any) {
	l.add(fmt.Sprintf(format, args...))
}

func (l *LinesUI) Critical(format string, args ...any) {
	l.add(fmt.Sprintf(format, args...))
}

func (l *LinesUI) Section(title string) {
	l.add(sectionLine(title))
}

func (l *LinesUI) KeyValue(rows [][2]string) {
	for _, line := range keyValueLines(rows) {
		l.add(line)
	}
}

// Table writes padded " | " separated rows, no borders.
func (l *LinesUI) Table(headers []string, rows [][]string) {
	widths := columnWidths(headers, rows)
	render := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			if i == len(cells)-1 {
				parts[i] = c
				continue
			}
			parts[i] = padCell(c, widths[i])
		}
		return strings.Join(parts, " | ")
	}
	if len(headers) > 0 {
		l.add(render(headers))
	}
	for _, row := range rows {
		l.add(render(row))
	}
}

func (l *LinesUI) Spinner(string) func() {
	return func() {}
}

// Confirm has nobody to ask and takes the default.
func (l *LinesUI) Confirm(_ string, defaultYes bool) bool {
	return defaultYes
}

// Writer output is split on newlines into lines when Lines is called.
func (l *LinesUI) Writer() io.Writer {
	return &l.buf
}

func (l *LinesUI) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]string{}, l.lines...)
	if l.buf.Len() > 0 {
		out = append(out, strings.Split(strings.TrimRight(l.buf.String(), "\n"), "\n")...)
	}
	return out
}
