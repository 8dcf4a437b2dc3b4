package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "topics":
		return runTopics(args[1:])
	case "index":
		return runIndex(args[1:])
	case "check":
		return runCheck(args[1:])
	case "ask":
		return runAsk(args[1:])
	case "serve":
		return runServe(args[1:])
	case "hash-token":
		return runHashToken(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "topicsearch CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  topicsearch <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health      Verify the vector index is reachable and print its stats")
	fmt.Fprintln(os.Stderr, "  topics      List the channel's current videos")
	fmt.Fprintln(os.Stderr, "  index       Fetch the channel and add every video to the vector index")
	fmt.Fprintln(os.Stderr, "  check       Check whether a proposed topic was already covered")
	fmt.Fprintln(os.Stderr, "  ask         Answer a question from the indexed archive")
	fmt.Fprintln(os.Stderr, "  serve       Start Echo API server")
	fmt.Fprintln(os.Stderr, "  hash-token  Print the bcrypt hash for ADMIN_TOKEN_HASH")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"topicsearch <command> -h\" for command-specific flags.")
}
