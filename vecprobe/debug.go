// +build debug

package vecprobe

import (
	"log"

	"go.uber.org/zap"

	"github.com/vecpal/vecpal/vecprobe/internal/vecprobe"
)

// newLogger returns a new logger with default options.
func newLogger() *vecprobe.Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return &vecprobe.Logger{SugaredLogger: l.Sugar()}
}

// newFileLogger returns a new logger and also writes the log output to files.
func newFileLogger(files ...string) *vecprobe.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = append(cfg.OutputPaths, files...)
	l, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return &vecprobe.Logger{SugaredLogger: l.Sugar()}
}
