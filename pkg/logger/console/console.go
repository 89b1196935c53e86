// Package console is the terminal backend of the logger facade.
package console

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/OFFIS-RIT/scorelink/pkg/logger"
)

type ConsoleLogger struct {
	logger *log.Logger
}

var _ logger.LoggerInstance = (*ConsoleLogger)(nil)

// ConsoleLoggerParams configures a ConsoleLogger.
//
// Prefix tags every line with the binary that wrote it ("scorelink",
// "worker"). JSON switches to one object per line for log collectors.
// Output defaults to stderr.
type ConsoleLoggerParams struct {
	Debug  bool
	Prefix string
	JSON   bool
	Output io.Writer
}

func NewConsoleLogger(params ConsoleLoggerParams) *ConsoleLogger {
	out := params.Output
	if out == nil {
		out = os.Stderr
	}
	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
		Prefix:          params.Prefix,
	}
	if params.Debug {
		opts.Level = log.DebugLevel
	}
	if params.JSON {
		opts.Formatter = log.JSONFormatter
	}
	return &ConsoleLogger{logger: log.NewWithOptions(out, opts)}
}

func (c *ConsoleLogger) Log(message string, keyvals ...any) {
	c.logger.Print(message, keyvals...)
}

func (c *ConsoleLogger) Info(message string, keyvals ...any) {
	c.logger.Info(message, keyvals...)
}

func (c *ConsoleLogger) Warn(message string, keyvals ...any) {
	c.logger.Warn(message, keyvals...)
}

func (c *ConsoleLogger) Error(message string, keyvals ...any) {
	c.logger.Error(message, keyvals...)
}

// Debug is dropped unless the logger was built with Debug set.
func (c *ConsoleLogger) Debug(message string, keyvals ...any) {
	c.logger.Debug(message, keyvals...)
}

// Fatal logs and exits with status 1.
func (c *ConsoleLogger) Fatal(message string, keyvals ...any) {
	c.logger.Fatal(message, keyvals...)
}
