// internal/logger/logger.go
package logger

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// NameField is the entry field holding the logger name.
const NameField = "logger"

const verboseTimestampFormat = "2006-01-02 15:04:05,000"

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&VerboseFormatter{})
	return l
}

// NewLogger returns the process-wide logger. Every package shares it so that
// Configure applies everywhere.
func NewLogger() *logrus.Logger {
	return base
}

// Named returns an entry tagged with the given logger name.
func Named(name string) *logrus.Entry {
	return base.WithField(NameField, name)
}

// Configure applies the level and format from the application configuration.
func Configure(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var formatter logrus.Formatter
	switch strings.ToLower(format) {
	case "", "verbose":
		formatter = &VerboseFormatter{}
	case "json":
		formatter = &logrus.JSONFormatter{}
	case "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	base.SetLevel(lvl)
	base.SetFormatter(formatter)
	return nil
}

// VerboseFormatter renders "[time] LEVEL name: message" followed by any
// remaining fields as sorted key=value pairs.
type VerboseFormatter struct {
	TimestampFormat string
}

func (f *VerboseFormatter) Format(e *logrus.Entry) ([]byte, error) {
	tsFormat := f.TimestampFormat
	if tsFormat == "" {
		tsFormat = verboseTimestampFormat
	}

	name, _ := e.Data[NameField].(string)
	if name == "" {
		name = "root"
	}

	b := e.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}
	fmt.Fprintf(b, "[%s] %s %s: %s", e.Time.Format(tsFormat), strings.ToUpper(e.Level.String()), name, e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != NameField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
