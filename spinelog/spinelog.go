// Package spinelog adapts spine.Logger onto a structured logger built with
// logiface, defaulting to the stumpy backend.
package spinelog

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"github.com/flowspine/spine"
)

// Logger implements spine.Logger by writing BatchEvent and MergeEvent as
// structured log lines.
type Logger struct {
	l *logiface.Logger[*stumpy.Event]
}

// New returns a Logger writing newline-delimited JSON to stderr via stumpy.
// Additional logiface/stumpy options are appended after the package
// defaults, so callers may override the writer, level, or field names.
func New(opts ...logiface.Option[*stumpy.Event]) *Logger {
	all := make([]logiface.Option[*stumpy.Event], 0, len(opts)+1)
	all = append(all, stumpy.L.WithStumpy())
	all = append(all, opts...)
	return &Logger{l: stumpy.L.New(all...)}
}

var _ spine.Logger = (*Logger)(nil)

func (l *Logger) LogBatch(e spine.BatchEvent) {
	l.l.Info().
		Int(`operator_id`, e.Operator.ID).
		Str(`operator_name`, e.Operator.Name).
		Int(`lower`, e.Lower).
		Int(`upper`, e.Upper).
		Int(`len`, e.Len).
		Log(`batch inserted`)
}

func (l *Logger) LogMerge(e spine.MergeEvent) {
	b := l.l.Debug().
		Int(`operator_id`, e.Operator.ID).
		Str(`operator_name`, e.Operator.Name).
		Int(`layer`, e.Layer)

	switch e.Phase {
	case spine.MergeBegin:
		b.Log(`merge begin`)
	case spine.MergeEnd:
		b.Int(`result_len`, e.Len).Log(`merge end`)
	}
}
