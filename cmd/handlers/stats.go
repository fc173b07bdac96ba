package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/WiDayn/AutoTopicSum/internal/keywords"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show keyword encoding statistics from the last clustering run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full record as JSON")
	return cmd
}

func runStats(asJSON bool) error {
	s, err := buildStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: store unavailable, no persisted record: %v\n", err)
		s = nil
	}
	if s != nil {
		defer s.Close()
	}

	ctx := context.Background()
	encoder := buildEncoder(ctx, buildEngine(ctx), s)
	record := encoder.Record()

	if asJSON {
		return printJSON(record)
	}
	printRecord(record)
	return nil
}

func printRecord(record keywords.Record) {
	fmt.Printf("Similarity threshold: %.2f\n\n", record.Threshold)

	if record.Stats == nil || len(record.Stats.Fields) == 0 {
		fmt.Println("No clustering run recorded yet. Run `autotopicsum profile` first.")
		return
	}

	fmt.Printf("Last run: %s\n\n", record.Stats.Timestamp.Format("2006-01-02 15:04:05"))

	namespaces := make([]string, 0, len(record.Stats.Fields))
	for ns := range record.Stats.Fields {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		fs := record.Stats.Fields[ns]
		fmt.Printf("%s: %d -> %d keywords (%.0f%% reduction), %d clusters\n",
			ns, fs.BeforeCount, fs.AfterCount, fs.ReductionRate*100, fs.TotalClusters)
		for _, c := range fs.Clusters {
			if c.Size < 2 {
				continue
			}
			fmt.Printf("  %s <= %v\n", c.Representative, c.Members)
		}
	}

	total := 0
	for _, m := range record.Mapping {
		total += len(m)
	}
	fmt.Printf("\nPersisted mappings: %d\n", total)
}
