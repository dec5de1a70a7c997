package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Init configures the shared logger. level falls back to info when empty or
// unknown.
func Init(level ...string) {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	Log.SetLevel(logrus.InfoLevel)
	if len(level) > 0 && level[0] != "" {
		if lvl, err := logrus.ParseLevel(level[0]); err == nil {
			Log.SetLevel(lvl)
		}
	}
}
