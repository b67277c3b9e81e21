// Package progress provides timestamped logging to an optional file and the console with color support.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Logger writes timestamped messages to the console and, when configured, to a log file.
// console output goes to stderr so rendered reports on stdout stay pipeable.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	out       io.Writer
	colors    *Colors
	debug     bool
	startTime time.Time
}

// Config holds logger configuration.
type Config struct {
	LogFile string // optional plain-text log file, appended to
	Debug   bool   // print Debug messages
	NoColor bool   // disable color output (sets color.NoColor globally)
}

// timestampFormat is the format for timestamps: YY-MM-DD HH:MM:SS
const timestampFormat = "06-01-02 15:04:05"

// indent aligns continuation lines with "[YY-MM-DD HH:MM:SS] ".
const indent = "                    "

// NewLogger creates a logger. colors may be nil, in which case defaults are used.
func NewLogger(cfg Config, colors *Colors) (*Logger, error) {
	if cfg.NoColor {
		color.NoColor = true
	}
	if colors == nil {
		colors = DefaultColors()
	}

	l := &Logger{out: os.Stderr, colors: colors, debug: cfg.Debug, startTime: time.Now()}

	if cfg.LogFile != "" {
		if dir := filepath.Dir(cfg.LogFile); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // path from user config
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		l.writeFile("# ualpha log\n")
		l.writeFile("Started: %s\n", l.startTime.Format("2006-01-02 15:04:05"))
		l.writeFile("%s\n", strings.Repeat("-", 60))
	}

	return l, nil
}

// Path returns the log file path, empty if logging to console only.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Print writes a timestamped informational message.
func (l *Logger) Print(format string, args ...any) {
	l.emit("", l.colors.Info(), fmt.Sprintf(format, args...))
}

// Debug writes a message only when debug output is enabled.
func (l *Logger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	l.emit("DEBUG: ", l.colors.Timestamp(), fmt.Sprintf(format, args...))
}

// Warn writes a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.emit("WARN: ", l.colors.Warn(), fmt.Sprintf(format, args...))
}

// Error writes an error message.
func (l *Logger) Error(format string, args ...any) {
	l.emit("ERROR: ", l.colors.Error(), fmt.Sprintf(format, args...))
}

// emit writes a message with timestamp on the first line and continuation lines indented.
// lines longer than the terminal are wrapped on word boundaries.
func (l *Logger) emit(prefix string, c *color.Color, msg string) {
	msg = strings.TrimRight(msg, "\n")
	if msg == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format(timestampFormat)
	tsPrefix := l.colors.Timestamp().Sprintf("[%s]", timestamp)
	width := contentWidth()

	var lines []string
	for line := range strings.SplitSeq(prefix+msg, "\n") {
		if len(line) > width {
			lines = append(lines, strings.Split(wrapText(line, width), "\n")...)
			continue
		}
		lines = append(lines, line)
	}

	for i, line := range lines {
		if i == 0 {
			l.writeFile("[%s] %s\n", timestamp, line)
			fmt.Fprintf(l.out, "%s %s\n", tsPrefix, c.Sprint(line))
			continue
		}
		if line == "" {
			l.writeFile("\n")
			fmt.Fprintln(l.out)
			continue
		}
		l.writeFile("%s%s\n", indent, line)
		fmt.Fprintf(l.out, "%s%s\n", indent, c.Sprint(line))
	}
}

// Elapsed returns formatted elapsed time since the logger was created.
func (l *Logger) Elapsed() string {
	return humanize.RelTime(l.startTime, time.Now(), "", "")
}

// Close writes the footer and closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeFile("%s\n", strings.Repeat("-", 60))
	l.writeFile("Completed: %s (%s)\n\n", time.Now().Format("2006-01-02 15:04:05"), l.Elapsed())

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	l.file = nil
	return nil
}

func (l *Logger) writeFile(format string, args ...any) {
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
}

// TerminalWidth returns the terminal width, using COLUMNS env var or the tty size.
// defaults to 80 if detection fails.
func TerminalWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return w
		}
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// contentWidth is the terminal width left after the timestamp prefix.
func contentWidth() int {
	const minWidth = 40
	w := TerminalWidth() - len(indent)
	if w < minWidth {
		return minWidth
	}
	return w
}

// wrapText wraps text to specified width, breaking on word boundaries.
func wrapText(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		wordLen := len(word)
		if i == 0 {
			result.WriteString(word)
			lineLen = wordLen
			continue
		}
		if lineLen+1+wordLen <= width {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wordLen
			continue
		}
		result.WriteString("\n")
		result.WriteString(word)
		lineLen = wordLen
	}
	return result.String()
}
