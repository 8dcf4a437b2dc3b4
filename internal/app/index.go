package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/topicsearch/internal/cli"
)

func runIndex(args []string) int {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 15*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "index does not accept positional arguments")
		return 2
	}

	ctx, cancel, rt, err := startRuntime(*timeout, envLoader, needs{collector: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer cancel()
	defer rt.Close()

	started := time.Now()
	result, err := rt.service.Ingest(ctx)
	if err != nil {
		rt.logger.Error().Err(err).Msg("index run failed")
		fmt.Fprintf(os.Stderr, "Index failed: %v\n", err)
		return exitCodeFor(err)
	}

	rt.logger.Info().
		Int("count", result.Count).
		Dur("elapsed", time.Since(started)).
		Msg("index run completed")
	fmt.Println(result.Message)
	return 0
}
