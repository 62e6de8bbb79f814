package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	sectionWidth = 50
	promptPrefix = "> "
)

// TerminalUI writes coloured replies to an output stream and reads
// confirmations from an input stream.
type TerminalUI struct {
	out      io.Writer
	in       *bufio.Reader
	au       aurora.Aurora
	terminal bool
}

// NewTerminalUI writes to os.Stdout and reads from os.Stdin. Colours and
// the spinner are enabled only when stdout is a real terminal.
func NewTerminalUI() *TerminalUI {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	return NewTerminalUIWithIO(os.Stdout, os.Stdin, isTTY)
}

// NewTerminalOutput is NewTerminalUI without an input stream, for hosts that
// read stdin themselves. Confirm then takes the default.
func NewTerminalOutput() *TerminalUI {
	return NewTerminalUIWithIO(os.Stdout, nil, term.IsTerminal(int(os.Stdout.Fd())))
}

func NewTerminalUIWithIO(out io.Writer, in io.Reader, colors bool) *TerminalUI {
	u := &TerminalUI{
		out:      out,
		au:       aurora.NewAurora(colors),
		terminal: colors,
	}
	if in != nil {
		u.in = bufio.NewReader(in)
	}
	return u
}

func (u *TerminalUI) writeLine(line string) {
	fmt.Fprintln(u.out, line)
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	case SeverityCritical:
		return u.au.Bold(t.Text).String()
	default:
		return t.Text
	}
}

func (u *TerminalUI) Info(format string, args ...any) {
	u.writeLine(fmt.Sprintf(format, args...))
}

func (u *TerminalUI) Success(format string, args ...any) {
	u.writeLine(u.au.Green(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Warn(format string, args ...any) {
	u.writeLine(u.au.Yellow(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Error(format string, args ...any) {
	u.writeLine(u.au.Red(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Critical(format string, args ...any) {
	u.writeLine(u.au.Bold(fmt.Sprintf(format, args...)).String())
}

// Section prints
//
//	=========== Transfer ===========
//
// surrounded by blank lines.
func (u *TerminalUI) Section(title string) {
	fmt.Fprintf(u.out, "\n%s\n\n", sectionLine(title))
}

func sectionLine(title string) string {
	titled := " " + title + " "
	bars := sectionWidth - runewidth.StringWidth(titled)
	if bars < 6 {
		bars = 6
	}
	left := bars / 2
	return strings.Repeat("=", left) + titled + strings.Repeat("=", bars-left)
}

// Confirm prints the question with [Y/n] or [y/N] and reads an answer. An
// empty answer, or no input stream, takes the default.
func (u *TerminalUI) Confirm(prompt string, defaultYes bool) bool {
	options := "[Y/n]"
	if !defaultYes {
		options = "[y/N]"
	}
	u.Info("%s %s", prompt, options)
	if u.in == nil {
		return defaultYes
	}
	for {
		fmt.Fprint(u.out, promptPrefix)
		text, err := u.in.ReadString('\n')
		input := strings.ToLower(strings.TrimSpace(text))
		switch input {
		case "":
			return defaultYes
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			return defaultYes
		}
		u.writeLine(u.au.Red("please enter y or n").String())
	}
}

func (u *TerminalUI) KeyValue(rows [][2]string) {
	for _, line := range keyValueLines(rows) {
		u.writeLine(line)
	}
}

func keyValueLines(rows [][2]string) []string {
	maxLabel := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > maxLabel {
			maxLabel = w
		}
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, runewidth.FillRight(r[0], maxLabel)+"  "+r[1])
	}
	return lines
}

// cellWidth is the visible width of s, ignoring ANSI colour codes.
func cellWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

func columnWidths(headers []string, rows [][]string) []int {
	ncols := len(headers)
	for _, r := range rows {
		if len(r) > ncols {
			ncols = len(r)
		}
	}
	widths := make([]int, ncols)
	for i, h := range headers {
		widths[i] = cellWidth(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if w := cellWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func padCell(s string, w int) string {
	if visible := cellWidth(s); visible < w {
		return s + strings.Repeat(" ", w-visible)
	}
	return s
}

// Table renders a bordered table. Cell values may carry colour codes from
// Style; widths are computed on the visible text.
func (u *TerminalUI) Table(headers []string, rows [][]string) {
	if len(headers) == 0 && len(rows) == 0 {
		return
	}
	widths := columnWidths(headers, rows)

	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	border := func(s string) string { return borderStyle.Render(s) }

	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("─", w+2)
	}
	renderRow := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			parts[i] = " " + padCell(val, widths[i]) + " "
		}
		return border("│") + strings.Join(parts, border("│")) + border("│")
	}

	u.writeLine(border("┌" + strings.Join(dashes, "┬") + "┐"))
	if len(headers) > 0 {
		u.writeLine(renderRow(headers))
		u.writeLine(border("├" + strings.Join(dashes, "┼") + "┤"))
	}
	for _, row := range rows {
		u.writeLine(renderRow(row))
	}
	u.writeLine(border("└" + strings.Join(dashes, "┴") + "┘"))
}

// Spinner animates while a slow call runs. Off a terminal it does nothing so
// piped output stays clean.
func (u *TerminalUI) Spinner(msg string) func() {
	if !u.terminal {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
	}
}

func (u *TerminalUI) Writer() io.Writer {
	return u.out
}
