package provisioning

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// LogrObserver implements Observer on top of a logr.Logger.
type LogrObserver struct {
	logger logr.Logger
}

// NewLogrObserver wraps logger.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{logger: logger}
}

// NewJSONObserver writes one JSON object per line to w.
func NewJSONObserver(w io.Writer) *LogrObserver {
	logger := funcr.NewJSON(func(obj string) {
		_, _ = fmt.Fprintln(w, obj)
	}, funcr.Options{LogTimestamp: true})
	return NewLogrObserver(logger)
}

// Printf implements Logger.
func (o *LogrObserver) Printf(format string, v ...any) {
	o.logger.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer. Failures are logged at error level.
func (o *LogrObserver) Event(event Event) {
	kv := []any{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		kv = append(kv, k, event.Fields[k])
	}

	switch event.Type {
	case EventPhaseFailed, EventResourceFailed:
		o.logger.Error(nil, event.Message, kv...)
	default:
		o.logger.Info(event.Message, kv...)
	}
}

// Progress implements Observer.
func (o *LogrObserver) Progress(phase string, current, total int) {
	o.logger.V(1).Info("progress", "phase", phase, "current", current, "total", total)
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	kv := make([]any, 0, 2*len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		kv = append(kv, k, fields[k])
	}
	return &LogrObserver{logger: o.logger.WithValues(kv...)}
}
