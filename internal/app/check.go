package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/topicsearch/internal/cli"
	"horse.fit/topicsearch/internal/topic"
)

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", time.Minute, "Command timeout")
	title := fs.String("title", "", "Proposed topic title")
	description := fs.String("description", "", "Proposed topic description")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "check does not accept positional arguments")
		return 2
	}

	proposal := topic.Proposal{Title: *title, Description: *description}
	if _, err := topic.BuildQuery(proposal); err != nil {
		fmt.Fprintln(os.Stderr, "--title or --description is required")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, rt, err := startRuntime(*timeout, envLoader, needs{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer cancel()
	defer rt.Close()

	verdict, err := rt.service.CheckDuplicate(ctx, proposal)
	if err != nil {
		rt.logger.Error().Err(err).Msg("duplicate check failed")
		fmt.Fprintf(os.Stderr, "Duplicate check failed: %v\n", err)
		return exitCodeFor(err)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(verdict); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeVerdict(os.Stdout, verdict); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
