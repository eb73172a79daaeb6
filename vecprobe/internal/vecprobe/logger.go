package vecprobe

import "go.uber.org/zap"

// Logger is the shared analysis logger, tagged with the name of the
// analyser it was handed to. Analysers receive it via SetLogger.
type Logger struct {
	*zap.SugaredLogger
	module string
}

// LogSetter is implemented by analysers that accept a Logger.
type LogSetter interface {
	SetLogger(*Logger)
}

// Module returns the tag of the analyser this logger is attached to.
func (l *Logger) Module() string {
	return l.module
}
