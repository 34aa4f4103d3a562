// Package logger wraps zap for the alarm controller.
//
// A global sugared logger with a console encoder is created at start-up.
// Services never reference it directly: they take a context and log through
// FromContext, so every component (controller, bus, journal, panel) gets a
// named, scoped logger and tests can inject an observed core.
package logger
