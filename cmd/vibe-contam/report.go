package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-contam/internal/output"
	"github.com/inodb/vibe-contam/internal/store"
)

func newReportCmd(v *viper.Viper) *cobra.Command {
	var (
		dbPath       string
		showTable    bool
		showVariants bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the most recent run recorded in a database",
		Example: `  vibe-contam report --db runs.duckdb
  vibe-contam report --db runs.sqlite --tsv`,
		Args: positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = v.GetString(keyDB)
			}
			if dbPath == "" {
				return &usageError{errors.New("--db is required (or set db in the config)")}
			}
			return runReport(cmd, dbPath, showTable, showVariants)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB or SQLite (.sqlite) database holding recorded runs")
	cmd.Flags().BoolVar(&showTable, "tsv", false, "Also print the likelihood table")
	cmd.Flags().BoolVar(&showVariants, "variants", false, "Also print the labelled variants as JSON")

	return cmd
}

func runReport(cmd *cobra.Command, dbPath string, showTable, showVariants bool) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	run, err := s.LatestRun(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", dbPath, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# run %s recorded %s\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"))
	summary := output.Summary{
		VCFFile:            run.Input.Path,
		ContaminationLevel: output.Percent(run.BestLevel),
		BestLevel:          run.BestLevel,
		MaxLogLikelihood:   run.MaxLogLikelihood,
		VariantCount:       run.VariantCount,
	}
	if err := output.WriteSummaryJSON(out, summary); err != nil {
		return err
	}

	if showTable {
		results, err := s.Likelihoods(ctx, run.ID)
		if err != nil {
			return err
		}
		if err := output.NewTabWriter(out).WriteAll(results); err != nil {
			return err
		}
	}

	if showVariants {
		variants, err := s.Variants(ctx, run.ID)
		if err != nil {
			return err
		}
		if err := output.WriteVariantsJSON(out, variants); err != nil {
			return err
		}
	}

	return nil
}
