package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"horse.fit/topicsearch/internal/topic"
	"horse.fit/topicsearch/internal/vectorindex"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printJSON(value any) error {
	return writeJSON(os.Stdout, value)
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func truncateForTable(value string, maxLen int) string {
	trimmed := strings.Join(strings.Fields(value), " ")
	if maxLen <= 0 {
		return trimmed
	}
	if utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}

	runes := []rune(trimmed)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func writeTopicsTable(out io.Writer, items []topic.ChannelItem) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PUBLISHED\tID\tTITLE\tURL")
	for _, item := range items {
		published := ""
		if item.PublishedAt != nil {
			published = item.PublishedAt.UTC().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", published, item.ID, truncateForTable(item.Title, 70), item.URL)
	}
	return tw.Flush()
}

func writeSimilarTable(out io.Writer, topics []topic.SimilarTopic) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIMILARITY\tTITLE\tURL")
	for _, similar := range topics {
		fmt.Fprintf(tw, "%.1f%%\t%s\t%s\n", similar.Similarity, truncateForTable(similar.Title, 70), similar.URL)
	}
	return tw.Flush()
}

func writeVerdict(out io.Writer, verdict topic.DuplicateVerdict) error {
	fmt.Fprintln(out, verdict.Message)
	if len(verdict.SimilarTopics) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	return writeSimilarTable(out, verdict.SimilarTopics)
}

func writeAnswer(out io.Writer, answer topic.Answer) error {
	fmt.Fprintln(out, strings.TrimSpace(answer.Answer))
	if len(answer.Sources) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Sources:")
	return writeSimilarTable(out, answer.Sources)
}

func writeStats(out io.Writer, stats vectorindex.Stats) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "backend\t%s\n", stats.Backend)
	fmt.Fprintf(tw, "model\t%s\n", stats.Model)
	fmt.Fprintf(tw, "documents\t%d\n", stats.Documents)
	if stats.LastIndexedAt != nil {
		fmt.Fprintf(tw, "last_indexed_at\t%s\n", stats.LastIndexedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
	return tw.Flush()
}
