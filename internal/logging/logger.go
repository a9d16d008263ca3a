// ABOUTME: Logrus setup for the CLI and MCP server.
// ABOUTME: Chooses level, text or JSON format, and stderr or a rotated log file.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupParams configures the standard logger.
type SetupParams struct {
	LogLevel      string
	LogFormatJSON bool
	// LogFileName sends logs to a rotated file instead of stderr.
	LogFileName string
	// Output overrides the destination; used by tests.
	Output io.Writer
}

// Setup configures the standard logrus logger and returns it.
// Logs never go to stdout, which the CLI and MCP transport own.
func Setup(params SetupParams) *logrus.Logger {
	log := logrus.StandardLogger()

	if params.LogFormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{})
	}

	log.SetLevel(GetLevel(params.LogLevel))

	switch {
	case params.Output != nil:
		log.SetOutput(params.Output)
	case params.LogFileName != "":
		if !strings.HasSuffix(params.LogFileName, ".log") {
			params.LogFileName += ".log"
		}
		log.SetOutput(&lumberjack.Logger{
			Filename: params.LogFileName,
			MaxSize:  10, // megabytes
			Compress: true,
		})
	default:
		log.SetOutput(os.Stderr)
	}

	return log
}

// GetLevel maps a level name to a logrus level, defaulting to warn.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.WarnLevel
	}
}
