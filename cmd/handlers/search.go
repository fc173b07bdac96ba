package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/pipeline"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	var (
		limit    int
		language string
		region   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search [topic]",
		Short: "Search all sources for a topic and build the event record",
		Long: `Search every configured source for the topic, deduplicate and rank the
results by relevance, and print the assembled event.

Examples:
  autotopicsum search "芯片出口管制"
  autotopicsum search --json "AI regulation"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(query, limit, language, region, asJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum articles per source (0 uses config)")
	cmd.Flags().StringVar(&language, "language", "", "Search language (e.g. zh-CN, en-US)")
	cmd.Flags().StringVar(&region, "region", "", "Search region (e.g. CN, US)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

func runSearch(query string, limit int, language, region string, asJSON bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	opts := searchOptions()
	if limit > 0 {
		opts.Limit = limit
	}
	if language != "" {
		opts.Language = language
	}
	if region != "" {
		opts.Region = region
	}

	engine := buildEngine(ctx)
	p := pipeline.New(
		buildAggregator(engine),
		buildConnectors(),
		pipeline.WithSearchOptions(opts),
		pipeline.WithProgress(printProgress),
	)

	result, err := p.Run(ctx, query)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(result)
	}
	printEvent(result.Event)
	printArticles(result.Articles)
	return nil
}

func printProgress(p core.Progress) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", p.Current, p.Total, p.Message)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printEvent(event core.Event) {
	fmt.Printf("Event: %s\n", event.Title)
	fmt.Printf("  ID:      %s\n", event.ID)
	fmt.Printf("  Date:    %s\n", event.Date.Format("2006-01-02 15:04"))
	fmt.Printf("  Sources: %d\n", event.SourceCount)
	if len(event.Tags) > 0 {
		fmt.Printf("  Tags:    %s\n", strings.Join(event.Tags, ", "))
	}
	if event.Summary != "" {
		fmt.Printf("  Summary: %s\n", event.Summary)
	}
	fmt.Println()
}

func printArticles(articles []core.Article) {
	if len(articles) == 0 {
		fmt.Println("No articles found.")
		return
	}
	fmt.Printf("Articles (%d):\n", len(articles))
	for i, a := range articles {
		marker := " "
		if a.Filter {
			marker = "~" // demoted for low relevance
		}
		when := "          "
		if !a.PublishedAt.IsZero() {
			when = a.PublishedAt.Format("2006-01-02")
		}
		fmt.Printf("%s %3d. [%s] %s (%s, relevance %.2f)\n", marker, i+1, when, a.Title, a.Source, a.Relevance)
		fmt.Printf("        %s\n", a.URL)
	}
}
