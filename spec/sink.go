package spec

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/clip/log"
)

// Sink receives the single diagnostic line the engine emits when no
// pattern matches. Implementations must not assume more than one
// Report per engine call.
type Sink interface {
	Report(msg string)
}

// WriterSink adapts an io.Writer; each report is one line.
type WriterSink struct {
	W io.Writer
}

// Report implements Sink.
func (s WriterSink) Report(msg string) {
	fmt.Fprintln(s.W, msg)
}

// LoggerSink adapts a log.Logger, reporting at Error level.
type LoggerSink struct {
	Logger log.Logger
}

// Report implements Sink.
func (s LoggerSink) Report(msg string) {
	s.Logger.Error("match failed", slog.String("reason", msg))
}
