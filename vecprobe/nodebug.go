// +build !debug

package vecprobe

import (
	"log"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/vecpal/vecpal/vecprobe/internal/vecprobe"
)

// newLogger returns a new logger with default options.
func newLogger() *vecprobe.Logger {
	color.NoColor = true
	l, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return &vecprobe.Logger{SugaredLogger: l.Sugar()}
}

// newFileLogger returns a new logger and also writes the log output to files.
func newFileLogger(files ...string) *vecprobe.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = append(cfg.OutputPaths, files...)
	l, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return &vecprobe.Logger{SugaredLogger: l.Sugar()}
}
