package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Options select the log level. Without Verbose or Debug the logger stays
// silent and only the command's final error is printed.
type Options struct {
	Verbose bool
	Debug   bool
	Output  io.Writer
}

// New builds the application logger.
func New(opts Options) *logrus.Logger {
	log := logrus.New()
	if opts.Output != nil {
		log.SetOutput(opts.Output)
	}
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "02-Jan-06 15:04:05",
	})

	switch {
	case opts.Debug:
		log.SetLevel(logrus.DebugLevel)
	case opts.Verbose:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetOutput(io.Discard)
		log.SetLevel(logrus.PanicLevel)
	}
	return log
}
