package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// InitLogger configures the shared logger. The TUI owns stdout while the
// program runs, so logs go to SCORE_LOG_FILE when set and are discarded
// otherwise.
func InitLogger() {
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Logger.SetLevel(logrus.InfoLevel)

	path := os.Getenv("SCORE_LOG_FILE")
	if path == "" {
		Logger.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Logger.SetOutput(io.Discard)
		return
	}
	Logger.SetOutput(f)
}
