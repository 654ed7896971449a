// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the logrus logger shared by every stage of a scan.
// Stages accept a logrus.FieldLogger so tests can swap in a null logger with
// a hook and assert on the recorded entries.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/authorcheck/pkg/types"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// New returns a logger writing to out at the configured level and format.
func New(cfg types.LogConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = out

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "", formatText:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	case formatJSON:
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format %q: use text or json", cfg.Format)
	}
	return log, nil
}

// ForRun tags every entry with a fresh run identifier.
func ForRun(log logrus.FieldLogger) logrus.FieldLogger {
	return log.WithField("run", uuid.NewString())
}
