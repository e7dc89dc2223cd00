package logging

import (
	"io"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/heroiclabs/nakama-common/runtime"
)

// Logger adapts a charmbracelet logger to runtime.Logger so code written against the
// Nakama runtime can log the same way from the CLI.
type Logger struct {
	base   *log.Logger
	fields map[string]interface{}
}

var _ runtime.Logger = (*Logger)(nil)

// New builds a logger writing to w. Unknown levels fall back to info.
func New(w io.Writer, prefix, level string) *Logger {
	l := log.New(w)
	l.SetPrefix(prefix)
	l.SetReportTimestamp(true)
	l.SetTimeFormat(time.DateTime)
	l.SetLevel(ParseLevel(level))
	return &Logger{base: l, fields: map[string]interface{}{}}
}

// ParseLevel maps debug, warn and error to their levels and anything else to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (l *Logger) Debug(format string, v ...interface{}) { l.base.Debugf(format, v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.base.Infof(format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.base.Warnf(format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.base.Errorf(format, v...) }

func (l *Logger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

// WithFields returns a child logger that prints fields as key/value pairs.
func (l *Logger) WithFields(fields map[string]interface{}) runtime.Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	keyvals := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		keyvals = append(keyvals, k, fields[k])
	}

	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &Logger{base: l.base.With(keyvals...), fields: merged}
}

func (l *Logger) Fields() map[string]interface{} {
	return maps.Clone(l.fields)
}
