// Package logging provides the structured diagnostics logger shared by the
// CLI. It is purely additive: the spec-mandated "one diagnostic line per
// failure" on stderr is written directly with fmt.Fprintln at the call
// site, never through this logger, so logging verbosity never changes the
// required CLI contract.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing text-formatted entries to w. level
// defaults to "info" for an empty or unrecognized string.
func New(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    false,
		DisableTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}
