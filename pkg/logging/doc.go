// Package logging provides structured logging utilities for sysdiag components.
//
// # Overview
//
// This package wraps the standard library slog package with sysdiag-specific
// defaults and conventions for consistent logging across all components. It
// supports environment-based log level configuration, module/version context
// injection, and automatic source location tracking for debug logs.
//
// # Features
//
//   - Structured JSON logging to stderr
//   - Environment-based log level configuration (LOG_LEVEL)
//   - Automatic module and version context
//   - Source location tracking for debug logs
//   - Flexible log level parsing
//   - Integration with standard library log package
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("sysdiag", "v1.0.0")
//
//	    // Use slog as normal
//	    slog.Info("running module", "id", "partition_disk")
//	    slog.Debug("detailed state", "data", complexObject)
//	    slog.Error("operation failed", "error", err)
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("runner", "v1.0.0", "debug")
//	logger.Info("pool started", "workers", 4)
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("cli", "v1.0.0", "warn")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug sysdiag -y
//
// If LOG_LEVEL is not set, defaults to INFO level. An explicit level passed
// to SetDefaultStructuredLoggerWithLevel takes precedence over the
// environment.
//
// # Output Format
//
// All logs are written to stderr in JSON format so that a report written to
// stdout is never interleaved with log lines:
//
//	{
//	    "time": "2026-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "module completed",
//	    "module": "sysdiag",
//	    "version": "v1.0.0",
//	    "id": "filesystem"
//	}
package logging
