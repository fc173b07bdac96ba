package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/profile"
)

// NewProfileCmd creates the profile command.
func NewProfileCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile [source]...",
		Short: "Generate media profiles for news sources",
		Long: `Generate a structured profile for each named media source. Cached
profiles are reused; new ones are generated with the configured model and
their keyword fields are canonicalized together.

Example:
  autotopicsum profile 新华社 BBC Reuters`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(args, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print profiles as JSON")
	return cmd
}

func runProfile(names []string, asJSON bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s, err := buildStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: profile store unavailable, running without cache: %v\n", err)
		s = nil
	}
	if s != nil {
		defer s.Close()
	}

	engine := buildEngine(ctx)
	enricher := buildEnricher(ctx, engine, s)
	if enricher == nil {
		return fmt.Errorf("profile generation requires GEMINI_API_KEY")
	}

	results := enricher.Profiles(ctx, names)
	if asJSON {
		return printJSON(results)
	}
	for _, r := range results {
		printProfileResult(r)
	}
	return nil
}

func printProfileResult(r profile.Result) {
	if r.Err != nil {
		fmt.Printf("%s: generation failed: %v\n\n", r.Source, r.Err)
		return
	}
	origin := "generated"
	if r.Cached {
		origin = "cached"
	}
	fmt.Printf("%s (%s):\n", r.Source, origin)
	for _, ns := range core.FieldNamespaces {
		if value := r.Profile.Field(ns); value != "" {
			fmt.Printf("  %-16s %s\n", ns+":", value)
		}
	}
	fmt.Println()
}
