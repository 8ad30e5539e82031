package server

import (
	"fmt"
	"time"

	"github.com/df07/go-raycore/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// webLogger implements core.Logger by forwarding every message to the
// server log and to the client's event stream.
type webLogger struct {
	server core.Logger
	events *eventStream
}

// newWebLogger creates a logger for one render stream
func newWebLogger(server core.Logger, events *eventStream) core.Logger {
	return &webLogger{server: server, events: events}
}

func (wl *webLogger) DebugEnabled() bool {
	return wl.server.DebugEnabled()
}

func (wl *webLogger) Debugf(format string, args ...any) {
	if !wl.server.DebugEnabled() {
		return
	}
	wl.server.Debugf(format, args...)
	wl.send("debug", format, args...)
}

func (wl *webLogger) Infof(format string, args ...any) {
	wl.server.Infof(format, args...)
	wl.send("info", format, args...)
}

func (wl *webLogger) Warnf(format string, args ...any) {
	wl.server.Warnf(format, args...)
	wl.send("warning", format, args...)
}

func (wl *webLogger) Errorf(format string, args ...any) {
	wl.server.Errorf(format, args...)
	wl.send("error", format, args...)
}

func (wl *webLogger) send(level, format string, args ...any) {
	// A client that went away only loses its console
	_ = wl.events.sendJSON("console", ConsoleMessage{
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
		Level:     level,
	})
}
