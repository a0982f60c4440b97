package types

// Logger defines methods for structured logging.
//
// Compatible with slog adapters, zap.SugaredLogger and other structured loggers.
// All methods accept alternating key-value pairs for structured fields, for example
// logger.Info("seat placed", "student_id", 3, "seat", "0,0,1").
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at InfoLevel.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at WarnLevel.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at ErrorLevel.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message at FatalLevel and calls os.Exit(1).
	//
	// The editor never calls Fatal itself; it is reserved for the service entry point.
	Fatal(msg string, keysAndValues ...any)
}
