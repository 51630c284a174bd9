package main

import (
	"fmt"
	"os"

	"github.com/core-tools/hsu-sockswatch/pkg/logging"
	"github.com/core-tools/hsu-sockswatch/pkg/watcher"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	Config   string `long:"config" description:"path to the configuration file" default:"config.json"`
	Once     bool   `long:"once" description:"run one check and exit"`
	LogLevel string `long:"log-level" description:"log level: debug, info, warn, error" default:"info"`
}

func main() {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v", err)
		os.Exit(1)
	}

	logger := logging.NewZapLogger(opts.LogLevel)
	defer logger.Sync()

	if opts.Once {
		err = watcher.CheckOnce(opts.Config, logger)
	} else {
		err = watcher.Run(opts.Config, logger)
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
