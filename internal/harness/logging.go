package harness

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is the logging capability every module can rely on.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// repeatFilter collapses runs of identical consecutive messages: the first
// message of a run is written at once, and the repeats after it become a
// single "(repeated N more times)" line. The engine's soft-failure warnings
// (capacity pressure, degenerate gradients, NaN guards) can fire on the
// same particle every sub-step for many steps in a row; without this a
// single stuck particle floods the log with thousands of identical lines.
type repeatFilter struct {
	mu      sync.Mutex
	lastMsg string
	repeat  int
}

// emit writes msg to out unless it's identical to the previous message on
// this stream, in which case it's counted instead. The counted run is
// flushed as a summary line once a different message arrives.
func (f *repeatFilter) emit(out *log.Logger, msg string) {
	f.mu.Lock()
	if msg == f.lastMsg {
		f.repeat++
		f.mu.Unlock()
		return
	}
	prevMsg, prevRepeat := f.lastMsg, f.repeat
	f.lastMsg, f.repeat = msg, 0
	f.mu.Unlock()

	if prevRepeat > 0 {
		out.Printf("%s (repeated %d more times)", prevMsg, prevRepeat)
	}
	out.Print(msg)
}

// DefaultLogger writes to stdout/stderr with timestamps, gated by a
// mutex-guarded debug toggle, and collapses repeated consecutive messages
// per stream.
type DefaultLogger struct {
	debugMu sync.Mutex
	debug   bool
	prefix  string

	out     *log.Logger
	err     *log.Logger
	outRepl repeatFilter
	errRepl repeatFilter
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(os.Stdout, "", flags),
		err:    log.New(os.Stderr, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.debugMu.Lock()
	defer l.debugMu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.debugMu.Lock()
	l.debug = enabled
	l.debugMu.Unlock()
}

func (l *DefaultLogger) prefixf(level, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.outRepl.emit(l.out, l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.outRepl.emit(l.out, l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.errRepl.emit(l.err, l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.errRepl.emit(l.err, l.prefixf("ERROR", format, args...))
}

type nopLogger struct{}

func NewNopLogger() Logger                             { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// LoggingModule installs a DefaultLogger as a resource.
type LoggingModule struct {
	Prefix string
	Debug  bool
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewDefaultLogger(m.Prefix, m.Debug))
}

// Logger returns the first Logger resource if present, else a no-op one.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
