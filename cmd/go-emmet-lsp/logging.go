package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// setupLogging configures logrus for the server and commonlog for glsp's
// own messages. stdout carries the protocol, so logs never go there.
func setupLogging(level, file string) (func(), error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var (
		out     io.Writer = os.Stderr
		closeFn           = func() {}
		path    *string
	)

	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		out = f
		closeFn = func() { _ = f.Close() }
		path = &file
	}

	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	commonlog.Configure(commonlogVerbosity(lvl), path)

	return closeFn, nil
}

// commonlogVerbosity maps a logrus level to commonlog's verbosity scale,
// where 0 logs errors only.
func commonlogVerbosity(lvl log.Level) int {
	switch {
	case lvl <= log.ErrorLevel:
		return 0
	case lvl == log.WarnLevel:
		return 1
	case lvl == log.InfoLevel:
		return 3
	default:
		return 4
	}
}
