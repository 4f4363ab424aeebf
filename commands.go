package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mpilhlt/kogito-playground/internal/database"
	"github.com/mpilhlt/kogito-playground/internal/export"
	"github.com/mpilhlt/kogito-playground/internal/grouping"
	"github.com/mpilhlt/kogito-playground/internal/logging"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// generateCommand runs a single generation against the inference service
// and prints the results without touching the database.
func generateCommand() *cobra.Command {
	cfg := models.DefaultRequestConfig()
	var printJSON, copyResults bool
	var saveDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate commonsense knowledge for a text or explicit heads",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *models.Options) {
			logger, err := logging.New(options.Debug)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer func() { _ = logger.Sync() }()

			if err := runGenerate(cmd, options, logger, cfg, printJSON, saveDir, copyResults); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Text, "text", "", "Text to extract heads from")
	flags.StringArrayVar(&cfg.Heads, "head", []string{}, "Explicit head, may be repeated")
	flags.StringSliceVar(&cfg.Relations, "relations", []string{}, "Relations to match from (default all)")
	flags.StringVar(&cfg.Model, "model", cfg.Model, "Knowledge model")
	flags.BoolVar(&cfg.ExtractHeads, "extract-heads", cfg.ExtractHeads, "Extract heads from the text")
	flags.BoolVar(&cfg.MatchRelations, "match-relations", cfg.MatchRelations, "Match relations with heads")
	flags.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Return the input graph without generating")
	flags.StringSliceVar(&cfg.HeadProcs, "head-procs", cfg.HeadProcs, "Head extraction strategies")
	flags.StringSliceVar(&cfg.RelProcs, "rel-procs", cfg.RelProcs, "Relation matching strategies")
	flags.BoolVar(&cfg.InferenceFiltering, "filter", cfg.InferenceFiltering, "Filter generations irrelevant to the context")
	flags.StringVar(&cfg.Context, "context", "", "Context used for filtering (default the text)")
	flags.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "Relevancy threshold used for filtering")
	flags.BoolVar(&printJSON, "json", false, "Print the results as JSON instead of tables")
	flags.StringVar(&saveDir, "save", "", "Write "+export.FileName+" to this directory")
	flags.BoolVar(&copyResults, "copy", false, "Copy the results to the clipboard")
	return cmd
}

func runGenerate(cmd *cobra.Command, options *models.Options, logger *zap.Logger, cfg models.RequestConfig, printJSON bool, saveDir string, copyResults bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !models.IsEnabledChoice(models.ModelChoices, cfg.Model) {
		logger.Warn("Model is not enabled in the playground", zap.String("model", cfg.Model))
	}
	mode, err := models.ParseContextKeyMode(options.ContextKeyMode)
	if err != nil {
		return err
	}
	client, err := newInferenceClient(options, logger)
	if err != nil {
		return err
	}

	if models.IsSlowModel(cfg.Model) {
		fmt.Fprintln(cmd.ErrOrStderr(), models.SlowModelNote)
	}
	result, err := client.Generate(cmd.Context(), cfg.Payload(mode))
	if err != nil {
		return err
	}

	if err := printResults(cmd.OutOrStdout(), result, printJSON); err != nil {
		return err
	}

	if saveDir != "" {
		path, err := export.SaveFile(saveDir, result.Graph)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Saved", path)
	}
	if copyResults {
		if err := export.CopyToClipboard(result.Graph); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied!")
	}
	return nil
}

// printResults writes the raw JSON view or the grouped tables. Empty results
// print as [] in the JSON view.
func printResults(out io.Writer, result *models.InferenceResponse, printJSON bool) error {
	if printJSON {
		data, err := export.MarshalRaw(result.Graph)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	fmt.Fprint(out, export.RenderTable(grouping.Group(result.Graph, result.Text)))
	return nil
}

// migrateCommand brings the database schema up to date and prints the
// migration state.
func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *models.Options) {
			ctx := context.Background()
			connStr := database.ConnString(options)
			if err := database.VerifySchema(ctx, connStr); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			info, err := database.MigrationInfo(ctx, connStr)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			fmt.Fprint(cmd.OutOrStdout(), info)
		}),
	}
}
