package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aitests/aitests/constants/lipgloss"
	"github.com/sirupsen/logrus"
)

const successField = "success"

var log = newLogger(os.Stderr)

// ConsoleFormatter renders entries as a single coloured line, e.g. "Warning: file not found".
type ConsoleFormatter struct {
	DisableColors bool
}

func (f *ConsoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	prefix, style := levelPrefix(entry)
	line := entry.Message
	if prefix != "" {
		line = prefix + ": " + line
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == successField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line += fmt.Sprintf(" %s=%v", k, entry.Data[k])
	}

	if f.DisableColors {
		b.WriteString(line)
	} else {
		b.WriteString(style.Render(line))
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelPrefix(entry *logrus.Entry) (string, interface{ Render(...string) string }) {
	if _, ok := entry.Data[successField]; ok {
		return "", lipgloss.Green
	}
	switch entry.Level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return "Debug", lipgloss.Magenta
	case logrus.WarnLevel:
		return "Warning", lipgloss.Yellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return "Error", lipgloss.Red
	default:
		return "", lipgloss.Blue
	}
}

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&ConsoleFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(out io.Writer) {
	log.SetOutput(out)
}

// SetVerbose switches between info and debug verbosity.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
		return
	}
	log.SetLevel(logrus.InfoLevel)
}

// DisableColors turns off lipgloss styling of log lines.
func DisableColors() {
	log.SetFormatter(&ConsoleFormatter{DisableColors: true})
}

func Debug(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Success(format string, args ...interface{}) {
	log.WithField(successField, true).Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// WithField returns an entry carrying a structured field.
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}
