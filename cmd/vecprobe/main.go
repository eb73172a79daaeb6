// Command vecprobe is the command line entry point to loop recurrence
// analysis.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/vecpal/vecpal/ir/build"
	"github.com/vecpal/vecpal/vecprobe"
)

const (
	Usage = `vecprobe is a tool for finding reduction, induction and first-order
recurrence variables in the loops of Go source code.

Usage:

  vecprobe [options] file.go [files.go...]

Options:

`
)

var (
	logPath   string
	entryFunc string
	logFile   string
	logWriter = ioutil.Discard
)

func init() {
	flag.StringVar(&logPath, "log", "", "Specify analysis log file (use '-' for stderr)")
	flag.StringVar(&entryFunc, "func", "", "Restrict analysis to one function (format: (import/path).FuncName)")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, Usage)
		flag.PrintDefaults()
		os.Exit(0)
	}

	conf := build.FromFiles(flag.Args()...).Default()
	switch logPath {
	case "":
	case "-":
		logWriter = os.Stderr
		conf.WithBuildLog(logWriter, log.LstdFlags)
	default:
		f, err := os.Create(logPath)
		if err != nil {
			log.Fatalf("Cannot create log %s: %v", logPath, err)
		}
		defer f.Close()
		conf = conf.WithBuildLog(f, log.LstdFlags)
		logWriter = f
		logFile = f.Name()
	}
	info, err := conf.Build()
	if err != nil {
		log.Fatal("Build failed:", err)
	}
	prober := vecprobe.New(info, logWriter)
	if logFile != "" {
		prober.AddLogFiles(logFile)
	}
	prober.SetOutput(os.Stdout)
	if entryFunc != "" {
		prober.SetEntryFunc(entryFunc)
	}
	prober.Analyse()
}
