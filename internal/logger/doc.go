// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing (ParseLogLevel),
//   - leveled key-value helpers (DebugKV, InfoKV, WarnKV).
//
// Stdout is reserved for the version string, so nothing here ever writes to
// it. Library packages take a context and extract the logger from it.
package logger
