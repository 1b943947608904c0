// Package logger wraps zap for the notification daemon and CLI.
//
// It keeps a global sugared logger with a console encoder, carries scoped
// loggers through contexts (ToContext/FromContext/WithName/WithKV/WithFields)
// and exposes level parsing plus leveled helpers such as Infof and ErrorKV.
package logger
