package softassert

import (
	"io"
	"log"

	"github.com/fatih/color"
)

// Sink receives every record as it is added.
type Sink interface {
	Failure(FailureRecord)
}

type SinkFunc func(FailureRecord)

func (f SinkFunc) Failure(r FailureRecord) {
	f(r)
}

var Discard Sink = SinkFunc(func(FailureRecord) {})

// LogSink writes one line per record. The line format is for humans only.
type LogSink struct {
	logger *log.Logger
	label  *color.Color
}

func NewLogSink(w io.Writer) *LogSink {
	return &LogSink{
		logger: log.New(w, "", log.LstdFlags),
		label:  color.New(color.FgRed, color.Bold),
	}
}

// SetColor forces colour on or off regardless of the terminal.
func (s *LogSink) SetColor(enabled bool) {
	if enabled {
		s.label.EnableColor()
	} else {
		s.label.DisableColor()
	}
}

func (s *LogSink) Failure(r FailureRecord) {
	s.logger.Printf("%s %s [%s, %s]", s.label.Sprint("soft failure"), r, r.Kind, r.ErrType)
}

// Logger is the part of testing.TB that TBSink needs.
type Logger interface {
	Helper()
	Logf(format string, args ...any)
}

// TBSink echoes records into the test log.
func TBSink(t Logger) Sink {
	return SinkFunc(func(r FailureRecord) {
		t.Helper()
		t.Logf("soft failure %s [%s, %s]", r, r.Kind, r.ErrType)
	})
}
