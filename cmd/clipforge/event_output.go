package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"clipforge/internal/scheduler"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

type eventPrinter struct {
	out      io.Writer
	colorize bool
}

func newEventPrinter(out io.Writer) *eventPrinter {
	return &eventPrinter{out: out, colorize: shouldColorize(out)}
}

// print receives scheduler events already serialized by the scheduler, so it
// needs no locking of its own.
func (p *eventPrinter) print(ev scheduler.Event) {
	line := formatEvent(ev)
	if line == "" {
		return
	}
	if color := eventColor(ev.Type); p.colorize && color != "" {
		line = color + line + ansiReset
	}
	fmt.Fprintln(p.out, line)
}

func formatEvent(ev scheduler.Event) string {
	var sb strings.Builder
	if ev.Worker > 0 {
		fmt.Fprintf(&sb, "[w%d] ", ev.Worker)
	}
	switch ev.Type {
	case scheduler.EventLog:
		if ev.Track != "" {
			fmt.Fprintf(&sb, "%s: ", ev.Track)
		}
		sb.WriteString(ev.Message)
	case scheduler.EventProgress:
		if ev.Percent < 0 {
			fmt.Fprintf(&sb, "%s: rendering", ev.Track)
		} else {
			fmt.Fprintf(&sb, "%s: %.1f%%", ev.Track, ev.Percent)
		}
		if ev.Message != "" {
			fmt.Fprintf(&sb, " (%s)", ev.Message)
		}
	case scheduler.EventDone:
		fmt.Fprintf(&sb, "%s: done -> %s", ev.Track, ev.Output)
	case scheduler.EventError:
		fmt.Fprintf(&sb, "%s: failed: %s", ev.Track, ev.Message)
	case scheduler.EventCancelled:
		fmt.Fprintf(&sb, "%s: cancelled", ev.Track)
	case scheduler.EventAllDone:
		sb.Reset()
		sb.WriteString("Batch finished: " + ev.Message)
	default:
		return ""
	}
	return sb.String()
}

func eventColor(kind scheduler.EventType) string {
	switch kind {
	case scheduler.EventDone:
		return ansiGreen
	case scheduler.EventError:
		return ansiRed
	case scheduler.EventCancelled:
		return ansiYellow
	case scheduler.EventAllDone:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
