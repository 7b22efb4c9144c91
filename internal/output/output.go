package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// UI provides colored terminal output and respects verbose/dry-run modes.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer

	mu sync.Mutex
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	faint         = color.New(color.Faint).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// StatusColor returns the HTTP status code colored by class.
func StatusColor(code int) string {
	s := fmt.Sprintf("%d", code)
	switch {
	case code >= 500:
		return red(s)
	case code >= 400:
		return yellow(s)
	case code >= 300:
		return cyan(s)
	case code >= 200:
		return green(s)
	default:
		return s
	}
}

func (u *UI) printf(w io.Writer, prefix, format string, a ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, a...))
}

func (u *UI) Info(format string, a ...any) {
	u.printf(u.Out, infoPrefix, format, a...)
}

func (u *UI) Success(format string, a ...any) {
	u.printf(u.Out, successPrefix, format, a...)
}

func (u *UI) Warning(format string, a ...any) {
	u.printf(u.ErrOut, warningPrefix, format, a...)
}

func (u *UI) Error(format string, a ...any) {
	u.printf(u.ErrOut, errorPrefix, format, a...)
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		u.printf(u.Out, verbosePrefix, format, a...)
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Request writes a one-line access log entry: method, path, colored status,
// duration and response size.
func (u *UI) Request(method, path string, status int, d time.Duration, size int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.Out, "%s %s %s %s %s\n",
		method, path, StatusColor(status),
		faint(fmt.Sprintf("%.3f ms", float64(d.Microseconds())/1000)),
		faint(fmt.Sprintf("- %d", size)),
	)
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
