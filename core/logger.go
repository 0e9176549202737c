package core

// Logger is any service that can log messages with additional context args.
// expected args: error, map[string]interface{}, user.User (the acting user)
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
