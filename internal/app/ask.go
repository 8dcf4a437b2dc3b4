package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/topicsearch/internal/cli"
)

func runAsk(args []string) int {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	question := fs.String("question", "", "Question about the archive")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := strings.TrimSpace(*question)
	if text == "" && fs.NArg() > 0 {
		text = strings.TrimSpace(strings.Join(fs.Args(), " "))
	}
	if text == "" {
		fmt.Fprintln(os.Stderr, "--question is required")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, rt, err := startRuntime(*timeout, envLoader, needs{generator: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer cancel()
	defer rt.Close()

	answer, err := rt.service.Answer(ctx, text)
	if err != nil {
		rt.logger.Error().Err(err).Msg("answer failed")
		fmt.Fprintf(os.Stderr, "Answer failed: %v\n", err)
		return exitCodeFor(err)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(answer); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeAnswer(os.Stdout, answer); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
