// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors and context-aware helpers used throughout the
// sync daemon.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, Fatal, etc.) are available directly on *Logger.
// Code that serves one sync session obtains a session-scoped logger via
// [Logger.ForSession] and passes it down through the context.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

func configureGlobals(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name() // return function name
	}
	zerolog.CallerFieldName = "func"
}

// NewLogger constructs a JSON *Logger writing to os.Stdout for the given role
// label (e.g. "pimsyncd").
//
// level is a zerolog level name ("debug", "info", ...); an empty or unknown
// value selects debug. Every entry carries "role", a timestamp and a "func"
// caller field holding the fully-qualified function name.
func NewLogger(role, level string) *Logger {
	return newLogger(os.Stdout, role, level)
}

// NewFileLogger is like [NewLogger] but appends to the file at path, falling
// back to stdout when the file cannot be opened. Interactive tools use it so
// log lines do not interleave with terminal prompts.
func NewFileLogger(role, level, path string) *Logger {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			out = f
		}
	}
	return newLogger(out, role, level)
}

func newLogger(out io.Writer, role, level string) *Logger {
	configureGlobals(level)
	logger := zerolog.New(out).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// Nop returns a *Logger that discards all log output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// ForSession returns a child logger tagged with the sync session id and the
// transport the session arrived on.
func (l *Logger) ForSession(sessionID, transport string) *Logger {
	return &Logger{l.With().
		Str("session_id", sessionID).
		Str("transport", transport).
		Logger()}
}

// FromRequest extracts the request-scoped logger attached by HTTP middleware.
func FromRequest(r *http.Request) *Logger {
	return &Logger{*log.Ctx(r.Context())}
}

// FromContext extracts the zerolog.Logger stored in ctx by zerolog's
// WithContext.
//
// If no logger has been attached to ctx, zerolog returns its default
// logger (or a disabled one), so this function never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
