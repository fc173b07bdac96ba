package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/pipeline"
	"github.com/WiDayn/AutoTopicSum/internal/similarity"
)

// NewTimelineCmd creates the timeline command.
func NewTimelineCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "timeline [topic]",
		Short: "Build a timeline of key moments for a topic",
		Long: `Search every configured source for the topic and cluster the coverage
into timeline nodes by topic and publication time. Requires an embedding
API key.

Example:
  autotopicsum timeline "芯片出口管制"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(strings.Join(args, " "), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the timeline as JSON")
	return cmd
}

func runTimeline(query string, asJSON bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	provider := buildProvider(ctx)
	engine := similarity.NewEngine(provider)
	p := pipeline.New(
		buildAggregator(engine),
		buildConnectors(),
		pipeline.WithSearchOptions(searchOptions()),
		pipeline.WithTimeline(buildTimeline(provider)),
		pipeline.WithProgress(printProgress),
	)

	result, err := p.Run(ctx, query)
	if err != nil {
		return err
	}
	nodes, err := p.Timeline(ctx, result.Articles)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(nodes)
	}
	printTimeline(query, nodes)
	return nil
}

func printTimeline(query string, nodes []core.TimelineNode) {
	if len(nodes) == 0 {
		fmt.Println("No timeline nodes: not enough clustered coverage.")
		return
	}
	fmt.Printf("Timeline for %q (%d nodes, newest first):\n\n", query, len(nodes))
	for _, node := range nodes {
		fmt.Printf("%s  %s\n", node.Timestamp.Format("2006-01-02 15:04"), node.KeyEvent)
		if node.Summary != "" {
			fmt.Printf("  %s\n", node.Summary)
		}
		for _, src := range node.SourceArticles {
			fmt.Printf("  - [%s] %s\n", src.Source, src.URL)
		}
		fmt.Println()
	}
}
