package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/topicsearch/internal/cli"
)

func runTopics(args []string) int {
	fs := flag.NewFlagSet("topics", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "topics does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, rt, err := startRuntime(*timeout, envLoader, needs{collector: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer cancel()
	defer rt.Close()

	items, err := rt.service.FetchTopics(ctx)
	if err != nil {
		rt.logger.Error().Err(err).Msg("list topics failed")
		fmt.Fprintf(os.Stderr, "Failed to list topics: %v\n", err)
		return exitCodeFor(err)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(items); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeTopicsTable(os.Stdout, items); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
