package core

// Logger is any leveled logging service.
// Implementations may inspect args for well-known types (e.g. a user.User to
// attach the acting user, or an error to attach a stack trace).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
