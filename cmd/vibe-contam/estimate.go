package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-contam/internal/contam"
	"github.com/inodb/vibe-contam/internal/output"
	"github.com/inodb/vibe-contam/internal/region"
	"github.com/inodb/vibe-contam/internal/store"
	"github.com/inodb/vibe-contam/internal/vcf"
)

// estimateOptions holds the resolved settings of one estimate run.
type estimateOptions struct {
	inputPath   string
	inputFormat string
	bedPath     string
	filter      vcf.SiteFilter
	grid        contam.Grid
	workers     int
	dbPath      string

	outJSON     string
	debugJSON   string
	variantJSON string
	tsvPath     string
}

func newEstimateCmd(v *viper.Viper, newLogger func(*cobra.Command) *zap.Logger) *cobra.Command {
	var opts estimateOptions

	cmd := &cobra.Command{
		Use:   "estimate [flags] <input-file>",
		Short: "Estimate contamination from a VCF or MAF file",
		Long: `Estimate the contamination level of a sample from the read counts at its
germline variants. Only PASS records of the first sample with a diploid,
called, non-reference genotype are used.`,
		Example: `  vibe-contam estimate sample.vcf.gz
  vibe-contam estimate -i sample.vcf.gz -o result.json
  vibe-contam estimate --snv-only -m 20 -b exome.bed -o result.json sample.vcf.gz
  vibe-contam estimate --db runs.duckdb --tsv likelihoods.tsv sample.vcf
  cat sample.vcf | vibe-contam estimate -`,
		Args: positionalArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case len(args) == 1 && opts.inputPath != "":
				return &usageError{errors.New("give the input either as an argument or with --in-vcf, not both")}
			case len(args) == 1:
				opts.inputPath = args[0]
			case opts.inputPath == "":
				return &usageError{errors.New("input file argument required")}
			}
			opts.filter.MinDepth = v.GetInt(keyMinDepth)
			opts.filter.SNVOnly = v.GetBool(keySNVOnly)
			opts.grid = contam.Grid{
				Start: v.GetFloat64(keyGridStart),
				Step:  v.GetFloat64(keyGridStep),
				Stop:  v.GetFloat64(keyGridStop),
			}
			opts.workers = v.GetInt(keyWorkers)
			opts.dbPath = v.GetString(keyDB)

			if opts.filter.MinDepth < 0 {
				return &usageError{fmt.Errorf("--min-depth must not be negative, got %d", opts.filter.MinDepth)}
			}
			if err := opts.grid.Validate(); err != nil {
				return &usageError{err}
			}

			return runEstimate(cmd, opts, newLogger(cmd))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.inputPath, "in-vcf", "i", "", "Input VCF or MAF file (alternative to the argument)")
	flags.BoolVar(&opts.filter.SNVOnly, "snv-only", false, "Only use SNVs")
	flags.IntVarP(&opts.filter.MinDepth, "min-depth", "m", 0, "Minimum read depth of a variant")
	flags.StringVarP(&opts.bedPath, "bed", "b", "", "BED file restricting the loci used")
	flags.StringVarP(&opts.outJSON, "out-json", "o", "", "Write the summary JSON to this file")
	flags.StringVarP(&opts.debugJSON, "debug-json", "d", "", "Write the likelihood of every contamination level as JSON")
	flags.StringVarP(&opts.variantJSON, "debug-variant-json", "v", "", "Write the labelled variants as JSON")
	flags.StringVar(&opts.tsvPath, "tsv", "", "Write the likelihood table as TSV ('-' for stdout)")
	flags.StringVar(&opts.dbPath, "db", "", "Record the run in a DuckDB or SQLite (.sqlite) database")
	flags.Float64Var(&opts.grid.Start, "start", contam.DefaultGridStart, "First contamination level")
	flags.Float64Var(&opts.grid.Step, "step", contam.DefaultGridStep, "Contamination level step")
	flags.Float64Var(&opts.grid.Stop, "stop", contam.DefaultGridStop, "Stop contamination level (exclusive)")
	flags.IntVar(&opts.workers, "workers", 0, "Goroutines scoring variants (0 = all CPUs)")
	flags.StringVar(&opts.inputFormat, "input-format", "", "Input format: vcf, maf (auto-detected if not specified)")

	for key, name := range map[string]string{
		keyMinDepth:  "min-depth",
		keySNVOnly:   "snv-only",
		keyGridStart: "start",
		keyGridStep:  "step",
		keyGridStop:  "stop",
		keyWorkers:   "workers",
		keyDB:        "db",
	} {
		v.BindPFlag(key, flags.Lookup(name))
	}

	return cmd
}

// runEstimate reads the sites and runs the grid search. Output files are
// staged and moved into place only after every output and the run record
// have been written, so a failed run leaves no files behind.
func runEstimate(cmd *cobra.Command, opts estimateOptions, logger *zap.Logger) error {
	defer logger.Sync()

	parser, format, err := openInput(opts.inputPath, opts.inputFormat)
	if err != nil {
		return err
	}
	defer parser.Close()

	if opts.bedPath != "" {
		regions, err := region.Load(opts.bedPath, logger)
		if err != nil {
			return err
		}
		opts.filter.Regions = regions
	}

	logger.Info("reading variants",
		zap.String("input", opts.inputPath),
		zap.String("format", format),
		zap.Int("min_depth", opts.filter.MinDepth),
		zap.Bool("snv_only", opts.filter.SNVOnly))

	sites, stats, err := vcf.ExtractSites(parser, opts.filter, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.inputPath, err)
	}
	logger.Debug("site statistics", zap.Any("stats", stats))

	estimator := contam.NewEstimator()
	estimator.SetWorkers(opts.workers)
	estimator.SetLogger(logger)

	est, err := estimator.Estimate(sites, opts.grid)
	if err != nil {
		return fmt.Errorf("estimate contamination: %w", err)
	}

	summary := output.NewSummary(opts.inputPath, est)

	var staged stagedOutputs
	defer staged.discard()
	if err := stageOutputs(&staged, opts, est, summary); err != nil {
		return err
	}

	if opts.dbPath != "" {
		runID, err := saveRun(cmd, opts, est)
		if err != nil {
			return err
		}
		logger.Info("recorded run", zap.String("run_id", runID), zap.String("db", opts.dbPath))
	}

	if err := staged.commit(); err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	if opts.tsvPath == "-" {
		if err := output.NewTabWriter(stdout).WriteAll(est.Results); err != nil {
			return err
		}
	}
	fmt.Fprintf(stdout, "Maximum likelihood contamination level: %g%% (%d variants)\n",
		summary.ContaminationLevel, summary.VariantCount)
	return nil
}

// stageOutputs writes every requested output file to its staging path.
func stageOutputs(staged *stagedOutputs, opts estimateOptions, est *contam.Estimate, summary output.Summary) error {
	if opts.outJSON != "" {
		if err := staged.stage(opts.outJSON, func(w io.Writer) error {
			return output.WriteSummaryJSON(w, summary)
		}); err != nil {
			return err
		}
	}
	if opts.debugJSON != "" {
		if err := staged.stage(opts.debugJSON, func(w io.Writer) error {
			return output.WriteResultsJSON(w, est.Results)
		}); err != nil {
			return err
		}
	}
	if opts.variantJSON != "" {
		if err := staged.stage(opts.variantJSON, func(w io.Writer) error {
			return output.WriteVariantsJSON(w, est.Variants)
		}); err != nil {
			return err
		}
	}
	if opts.tsvPath != "" && opts.tsvPath != "-" {
		return staged.stage(opts.tsvPath, func(w io.Writer) error {
			return output.NewTabWriter(w).WriteAll(est.Results)
		})
	}
	return nil
}

func saveRun(cmd *cobra.Command, opts estimateOptions, est *contam.Estimate) (string, error) {
	fp, err := store.StatFile(opts.inputPath)
	if err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}

	s, err := store.Open(opts.dbPath)
	if err != nil {
		return "", err
	}
	defer s.Close()

	return s.SaveRun(cmd.Context(), store.NewRun(fp, est))
}
