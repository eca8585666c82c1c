// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rlog is the process-wide logging backend: one rotating log file
// plus stdout, fanned out into per-subsystem loggers the way exccd's own
// logger.go wires decred/slog. The pure consensus package takes no logger
// of its own (spec.md section 9 keeps it a capability-injected, I/O-free
// validator); rlog is used only by the storage, reorg, and command-line
// layers that sit around it.
package rlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem tags. Kept short and upper-cased to match exccd's own
// ADXR/AMGR/... convention.
const (
	SubsystemConsensus   = "CONS"
	SubsystemStore       = "STOR"
	SubsystemReorg       = "RORG"
	SubsystemConformance = "CNFM"
	SubsystemNode        = "NODE"
)

// logWriter fans out backend writes to stdout and the rotating log file.
// Writes before InitLogRotator has run reach stdout only, the same guard
// logger.go uses to avoid a nil pointer dereference on early logging.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if LogRotator != nil {
		LogRotator.Write(p)
	}
	return len(p), nil
}

var backendLog = slog.NewBackend(logWriter{})

// LogRotator is the rotating file sink. It is nil until InitLogRotator
// runs; it should be closed on process shutdown by the caller.
var LogRotator *rotator.Rotator

var (
	ConsLog = backendLog.Logger(SubsystemConsensus)
	StorLog = backendLog.Logger(SubsystemStore)
	RorgLog = backendLog.Logger(SubsystemReorg)
	CnfmLog = backendLog.Logger(SubsystemConformance)
	NodeLog = backendLog.Logger(SubsystemNode)
)

// subsystemLoggers maps each subsystem tag to its logger, used for
// level lookups by ParseAndSetDebugLevels / SetLogLevel.
var subsystemLoggers = map[string]slog.Logger{
	SubsystemConsensus:   ConsLog,
	SubsystemStore:       StorLog,
	SubsystemReorg:       RorgLog,
	SubsystemConformance: CnfmLog,
	SubsystemNode:        NodeLog,
}

// InitLogRotator creates the rotating log file at logFile, rolling at 10MB
// with up to 8 backups kept, mirroring exccd's own rotator parameters.
func InitLogRotator(logFile string) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("rlog: failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024*1024, false, 8)
	if err != nil {
		return fmt.Errorf("rlog: failed to create file rotator: %w", err)
	}
	LogRotator = r
	return nil
}

// SetLogLevel sets the logging level for one subsystem. Unknown subsystem
// tags are ignored, same as exccd's own SetLogLevel.
func SetLogLevel(subsystemTag, logLevel string) {
	logger, ok := subsystemLoggers[subsystemTag]
	if !ok {
		return
	}
	level, ok := slog.LevelFromString(logLevel)
	if !ok {
		level = slog.LevelInfo
	}
	logger.SetLevel(level)
}

// SetLogLevels sets every subsystem logger to logLevel.
func SetLogLevels(logLevel string) {
	for tag := range subsystemLoggers {
		SetLogLevel(tag, logLevel)
	}
}

// ParseAndSetDebugLevels parses a debug level specification of either a
// single level ("info") or a comma-separated list of subsystem=level
// pairs ("CONS=debug,STOR=trace") and applies it.
func ParseAndSetDebugLevels(spec string) error {
	if !strings.Contains(spec, ",") && !strings.Contains(spec, "=") {
		if !validLogLevel(spec) {
			return fmt.Errorf("rlog: invalid debug level %q", spec)
		}
		SetLogLevels(spec)
		return nil
	}

	for _, pair := range strings.Split(spec, ",") {
		fields := strings.SplitN(pair, "=", 2)
		if len(fields) != 2 {
			return fmt.Errorf("rlog: invalid subsystem=level pair %q", pair)
		}
		tag, level := fields[0], fields[1]
		if _, ok := subsystemLoggers[tag]; !ok {
			return fmt.Errorf("rlog: unknown subsystem %q", tag)
		}
		if !validLogLevel(level) {
			return fmt.Errorf("rlog: invalid debug level %q for subsystem %q", level, tag)
		}
		SetLogLevel(tag, level)
	}
	return nil
}

func validLogLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error", "critical":
		return true
	}
	return false
}
