package logger

import (
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLogger writes to a size-rotated log file.
type FileLogger struct {
	logger *log.Logger
	sink   *lumberjack.Logger
}

// FileOptions configures log file rotation. Zero values fall back to
// lumberjack defaults.
type FileOptions struct {
	// MaxSizeMB is the maximum size of the log file before rotation.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to retain.
	MaxBackups int
	// MaxAgeDays is the maximum age of a rotated file in days.
	MaxAgeDays int
}

// NewFileLogger creates a logger backed by a rotating file at path.
func NewFileLogger(path string, opts FileOptions) *FileLogger {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	return &FileLogger{
		logger: log.New(sink, "", log.LstdFlags),
		sink:   sink,
	}
}

// Info logs an informational message with [INFO] prefix.
func (f *FileLogger) Info(format string, args ...interface{}) {
	f.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (f *FileLogger) Warning(format string, args ...interface{}) {
	f.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (f *FileLogger) Error(format string, args ...interface{}) {
	f.logger.Printf("[ERROR] "+format, args...)
}

// Close closes the underlying rotating file.
func (f *FileLogger) Close() error {
	return f.sink.Close()
}

var _ Logger = (*FileLogger)(nil)

// writerAdapter lets a Logger serve as an io.Writer for code that insists
// on a stdlib *log.Logger.
type writerAdapter struct {
	l Logger
}

func (w *writerAdapter) Write(p []byte) (int, error) {
	w.l.Info("%s", string(p))
	return len(p), nil
}

// ToStdLogger wraps a Logger into a stdlib *log.Logger.
func ToStdLogger(l Logger) *log.Logger {
	return log.New(&writerAdapter{l: l}, "", 0)
}
