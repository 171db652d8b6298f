package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
)

// Options controls logger initialization
type Options struct {
	Level  string // DEBUG, INFO, WARN or ERROR
	Dir    string // empty disables file output
	MaxAge int    // days to keep rotated files
}

// LogFormatter log formatter structure
type LogFormatter struct {
	TimestampFormat string
	LevelDesc       []string
}

// Format format entry in custom format
func (f *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)
	level := f.LevelDesc[entry.Level]

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", timestamp, level, entry.Message)
	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
		}
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

var std = newLogger()

func newLogger() *log.Logger {
	l := log.New()
	l.SetFormatter(&LogFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		LevelDesc:       []string{"PANIC", "FATAL", "ERROR", "WARN", "INFO", "DEBUG", "TRACE"},
	})
	l.SetOutput(os.Stdout)
	l.SetLevel(log.InfoLevel)
	return l
}

// Init initializes the logger
func Init(opts Options) error {
	std.SetLevel(parseLevel(opts.Level))

	if opts.Dir == "" {
		std.SetOutput(os.Stdout)
		return nil
	}

	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 2
	}

	rl, err := initializeLogRotation(opts.Dir, maxAge)
	if err != nil {
		return fmt.Errorf("log rotation: %w", err)
	}
	std.SetOutput(io.MultiWriter(os.Stdout, rl))
	return nil
}

// initializeLogRotation rotates hourly and drops files older than maxAgeDays
func initializeLogRotation(dir string, maxAgeDays int) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return rotatelogs.New(
		filepath.Join(dir, "%Y-%m-%d-%H.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, "current.log")),
		rotatelogs.WithRotationTime(time.Hour),
		rotatelogs.WithMaxAge(time.Duration(maxAgeDays)*24*time.Hour),
	)
}

func parseLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DebugLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Info logs informational messages
func Info(message string) {
	std.Info(message)
}

// Error logs error messages
func Error(message string) {
	std.Error(message)
}

// Debug logs debug messages
func Debug(message string) {
	std.Debug(message)
}

// Warn logs warning messages
func Warn(message string) {
	std.Warn(message)
}

// Fatal logs fatal error and exits
func Fatal(message string) {
	std.Fatal(message)
}

// Infof logs formatted informational message
func Infof(format string, args ...interface{}) {
	std.Infof(format, args...)
}

// Warnf logs formatted warning message
func Warnf(format string, args ...interface{}) {
	std.Warnf(format, args...)
}

// Errorf logs formatted error message
func Errorf(format string, args ...interface{}) {
	std.Errorf(format, args...)
}

// Debugf logs formatted debug message
func Debugf(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

// WithFields logs with additional context
func WithFields(fields map[string]interface{}, message string) {
	std.WithFields(log.Fields(fields)).Info(message)
}
