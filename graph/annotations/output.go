package annotations

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}

	// Auto-detect color support
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}

	return &OutputFormatter{
		useColor: useColor,
		writer:   w,
	}
}

// Handle implements the Handler interface - prints events as they occur
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)
	d := event.Data

	switch event.Name {
	case OptimizerSkipped:
		return fmt.Sprintf("%s %s optimizer skipped: %v",
			latency, f.colorize("-", color.FgYellow), d["reason"])

	case OptimizerApplied:
		return fmt.Sprintf("%s %s %s\n%s %s",
			latency,
			f.colorize("===", color.FgGreen),
			truncatePlan(fmt.Sprint(d["before"])),
			f.colorize("  =>", color.FgGreen),
			truncatePlan(fmt.Sprint(d["after"])))

	case RewriteExpand, RewriteProperties:
		return fmt.Sprintf("%s rewrote %s at depth %v",
			latency, f.colorize(fmt.Sprint(d["step"]), color.FgCyan), d["depth"])

	case FoldFilter:
		return fmt.Sprintf("%s folded %s into %v",
			latency, f.colorizeCount("filters", intOf(d["count"])), d["step"])

	case FoldOrder:
		return fmt.Sprintf("%s folded order %v into %v", latency, d["keys"], d["step"])

	case FoldRange:
		verb := "merged"
		if removed, _ := d["removed"].(bool); removed {
			verb = "folded"
		}
		return fmt.Sprintf("%s %s limit %v into %v", latency, verb, d["limit"], d["step"])

	case BatchTagged:
		return fmt.Sprintf("%s %s %v", latency, f.colorize("multikey", color.FgMagenta), d["step"])

	case PrefetchTagged:
		return fmt.Sprintf("%s %s %v (batch %v)",
			latency, f.colorize("prefetch", color.FgMagenta), d["step"], d["batch"])

	case LocalRewritten:
		return fmt.Sprintf("%s optimized local block %v", latency, d["step"])

	case LocalInlined:
		return fmt.Sprintf("%s %s local block into %v",
			latency, f.colorize("inlined", color.FgGreen), d["step"])

	case StrategyApplied:
		return fmt.Sprintf("%s applied strategy %v", latency, d["strategy"])

	case ExecutionBegin:
		return fmt.Sprintf("%s %s execution %v: %s",
			latency, f.colorize("===", color.FgYellow), d["execution"], truncatePlan(fmt.Sprint(d["plan"])))

	case ExecutionComplete:
		if success, _ := d["success"].(bool); !success {
			return fmt.Sprintf("%s %s execution failed: %v", latency, f.colorize("✗", color.FgRed), d["error"])
		}
		return fmt.Sprintf("%s %s execution done with %s",
			latency, f.colorize("===", color.FgGreen), f.colorizeCount("elements", intOf(d["results"])))

	case BatchDispatched:
		return fmt.Sprintf("%s dispatched %v batch of %s",
			latency, d["kind"], f.colorizeCount("keys", intOf(d["keys"])))

	case PrefetchLoaded:
		return fmt.Sprintf("%s prefetched %s", latency, f.colorizeCount("vertices", intOf(d["vertices"])))

	case ErrorBackend:
		return fmt.Sprintf("%s %s backend error: %v", latency, f.colorize("✗", color.FgRed), d["error"])

	default:
		return fmt.Sprintf("%s %s %v", latency, event.Name, d)
	}
}

// formatLatency formats a duration as [XXXms] or [XXXµs] with color coding.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	// Use microseconds for sub-millisecond durations
	if d < time.Millisecond {
		us := d.Microseconds()
		s := fmt.Sprintf("[%dµs]", us)
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	// Use floating-point milliseconds to preserve precision
	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)

	if !f.useColor {
		return s
	}

	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount formats a count with a label, using color based on the label type.
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)

	if !f.useColor {
		return text
	}

	switch strings.ToLower(label) {
	case "filters":
		return color.CyanString(text)
	case "elements", "vertices":
		return color.MagentaString(text)
	case "keys":
		return color.BlueString(text)
	default:
		return text
	}
}

// colorize applies color if enabled.
func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// truncatePlan shortens long plan renderings for display.
func truncatePlan(plan string) string {
	const maxLen = 120
	if len(plan) <= maxLen {
		return plan
	}
	return plan[:maxLen-3] + "..."
}

func intOf(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint:
		return int(n)
	}
	return 0
}

// ConsoleHandler creates a handler that prints formatted events to stdout.
func ConsoleHandler() Handler {
	return NewOutputFormatter(os.Stdout).Handle
}

// isTerminal checks if the file descriptor is a terminal.
func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
