package logger

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/kr/pretty"
	log "github.com/sirupsen/logrus"
)

const EnvLogLevel = "UNITY_VIEWER_LOGLEVEL"

// Initialize sets up the console logger from UNITY_VIEWER_LOGLEVEL, falling
// back to warn for empty or unknown values.
func Initialize() {
	SetConsoleLogger(ParseLevel(os.Getenv(EnvLogLevel)))
}

func ParseLevel(value string) log.Level {
	level, err := log.ParseLevel(strings.TrimSpace(value))
	if err != nil {
		return log.WarnLevel
	}
	return level
}

func SetConsoleLogger(level log.Level) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
}

// Fields starts a structured entry, for messages that carry identifiers
// a batch run is later filtered by.
func Fields(fields log.Fields) *log.Entry {
	return log.WithFields(fields)
}

func TraceMessage(format string, v ...any) {
	if log.IsLevelEnabled(log.TraceLevel) {
		logMultiLine(fmt.Sprintf(format, preFormatArgs(v)...), log.Trace)
	}
}

func DebugMessage(format string, v ...any) {
	if log.IsLevelEnabled(log.DebugLevel) {
		logMultiLine(fmt.Sprintf(format, preFormatArgs(v)...), log.Debug)
	}
}

func InfoMessage(format string, v ...any) {
	if log.IsLevelEnabled(log.InfoLevel) {
		logMultiLine(fmt.Sprintf(format, preFormatArgs(v)...), log.Info)
	}
}

func WarnMessage(format string, v ...any) {
	if log.IsLevelEnabled(log.WarnLevel) {
		logMultiLine(fmt.Sprintf(format, preFormatArgs(v)...), log.Warn)
	}
}

func ErrorMessage(format string, v ...any) {
	if log.IsLevelEnabled(log.ErrorLevel) {
		logMultiLine(fmt.Sprintf(format, preFormatArgs(v)...), log.Error)
	}
}

// errors keep their own message; everything composite goes through pretty
func preFormatArgs(v []any) []any {
	vv := make([]any, 0, len(v))
	for _, o := range v {
		if _, ok := o.(error); ok {
			vv = append(vv, o)
			continue
		}
		switch reflect.ValueOf(o).Kind() {
		case reflect.Struct, reflect.Interface, reflect.Ptr,
			reflect.Slice, reflect.Array, reflect.Map:
			vv = append(vv, pretty.Formatter(o))
		default:
			vv = append(vv, o)
		}
	}
	return vv
}

func logMultiLine(message string, logFunc func(args ...any)) {
	s := bufio.NewScanner(strings.NewReader(message))
	for s.Scan() {
		logFunc(s.Text())
	}
}
