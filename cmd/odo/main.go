// odo is a terminal client for the vehicle-maintenance service: a garage
// overview, service reminders and display preferences that follow the
// signed-in user's profile.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/odo/internal/app"
	"github.com/five82/odo/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options

	flagSet := pflag.NewFlagSet("odo", pflag.ContinueOnError)
	flagSet.StringVar(&opts.ConfigPath, "config", "", "config file path (default "+config.DefaultPath()+")")
	flagSet.IntVar(&opts.PollEvery, "poll", 0, "garage refresh interval in seconds (default from config, 30s)")
	flagSet.BoolVar(&opts.Debug, "debug", false, "write debug records to the log file")
	flagSet.StringVar(&opts.Appearance, "appearance", "", "initial color scheme before sign-in: auto, dark or light")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "odo: %v\n", err)
		return 2
	}
	if args := flagSet.Args(); len(args) > 0 {
		fmt.Fprintf(os.Stderr, "odo: unexpected argument: %s\n", args[0])
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "odo: %v\n", err)
		return 1
	}
	return 0
}
