package core

// Logger is any service that can record app events and report errors.
// Implementations may use extra args to attach structured context
// (eg. the acting student) to a report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
