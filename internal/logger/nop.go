// Package logger holds the discard logger used when callers configure none.
package logger

import "github.com/arloliu/assign/types"

// NopLogger drops every message. Fatal does not exit.
type NopLogger struct{}

var _ types.Logger = NopLogger{}

// NewNop returns a logger that discards all messages.
//
// Example:
//
//	assigner, err := assign.NewAssigner(cfg, cloud, assign.WithLogger(logger.NewNop()))
func NewNop() NopLogger {
	return NopLogger{}
}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l types.Logger) types.Logger {
	if l == nil {
		return NopLogger{}
	}

	return l
}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
func (NopLogger) Fatal(string, ...any) {}
