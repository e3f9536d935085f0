package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/docbatch/internal/batch"
	"github.com/pdiddy/docbatch/internal/convert"
	"github.com/pdiddy/docbatch/internal/logging"
	"github.com/pdiddy/docbatch/internal/secrets"
	"github.com/pdiddy/docbatch/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert every matching document in a directory",
	Long: `Convert scans --input-dir (not recursively) for files matching --pattern,
converts each through the selected backend, and writes <stem>.json or
<stem>.markdown into --output-dir. JSON files wrap the structured document
with a metadata block holding source_file, extraction_date, and any caller
metadata from the config file, --metadata-file, and --meta.

A document that fails to convert is reported and skipped; the command exits
non-zero when any document failed.`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.String("input-dir", "input", "directory containing documents to convert")
	f.String("output-dir", "output", "directory for converted files (created if missing)")
	f.String("pattern", batch.DefaultPattern, "glob matched against file names")
	f.String("format", string(types.FormatJSON), "output format: json or markdown")
	f.StringArray("meta", nil, "metadata key=value added to every JSON output (repeatable)")
	f.String("metadata-file", "", "YAML mapping of metadata added to every JSON output")
	f.Bool("parallel", false, "convert documents on a worker pool")
	f.Int("batch-size", batch.DefaultBatchSize, "documents submitted to the pool per wave")
	f.Int("max-workers", 0, "maximum concurrent conversions (default: CPU count, at most 32)")
	f.Bool("progress", true, "show a progress bar on stderr")
	f.String("backend", string(types.BackendMarkitdown), "conversion backend: markitdown, pdftext, or docling-serve")
	f.String("image", convert.DefaultMarkitdownImage, "container image for the markitdown backend")
	f.String("server-url", "", "docling-serve base URL (e.g. http://localhost:5001)")
	f.Duration("timeout", convert.DefaultTimeout, "per-document request timeout for docling-serve")

	for key, flag := range map[string]string{
		"convert.input_dir":    "input-dir",
		"convert.output_dir":   "output-dir",
		"convert.pattern":      "pattern",
		"convert.format":       "format",
		"convert.parallel":     "parallel",
		"convert.batch_size":   "batch-size",
		"convert.max_workers":  "max-workers",
		"convert.progress":     "progress",
		"converter.backend":    "backend",
		"converter.image":      "image",
		"converter.server_url": "server-url",
		"converter.timeout":    "timeout",
	} {
		mustBind(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	format, err := types.ParseExportFormat(string(cfg.Batch.Format))
	if err != nil {
		return err
	}

	metadataFile, _ := cmd.Flags().GetString("metadata-file")
	pairs, _ := cmd.Flags().GetStringArray("meta")
	meta, err := batchMetadata(cfg.Batch.Metadata, metadataFile, pairs)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loaded, err := secrets.Load(viper.GetString("secrets_dir"), log)
	if err != nil {
		return err
	}
	cfg.Converter.APIKey = secrets.Default(loaded, secrets.DoclingAPIKey, cfg.Converter.APIKey)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv, err := convert.New(ctx, cfg.Converter)
	if err != nil {
		return err
	}
	log.Info("converter ready", zap.String("backend", backendName(cfg.Converter.Backend)))

	opts := []batch.Option{
		batch.WithBatchSize(cfg.Batch.BatchSize),
		batch.WithMaxWorkers(cfg.Batch.MaxWorkers),
		batch.WithLogger(log),
	}
	if cfg.Batch.Progress {
		opts = append(opts, batch.WithProgressWriter(cmd.ErrOrStderr()))
	}

	result, err := batch.NewProcessor(conv, opts...).ProcessDirectory(ctx, batch.Request{
		InputDir:  cfg.Batch.InputDir,
		OutputDir: cfg.Batch.OutputDir,
		Pattern:   cfg.Batch.Pattern,
		Format:    format,
		Metadata:  meta,
		Parallel:  cfg.Batch.Parallel,
	})
	if err != nil && result.Total() == 0 {
		return err
	}
	printSummary(cmd.OutOrStdout(), result)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}

// printSummary writes one status line per document in discovery order,
// followed by the batch totals.
func printSummary(w io.Writer, r batch.Result) {
	outcomes := slices.Clone(r.Outcomes)
	slices.SortFunc(outcomes, func(a, b types.ConversionOutcome) int {
		return a.Task.Index - b.Task.Index
	})
	for _, o := range outcomes {
		if o.Succeeded() {
			fmt.Fprintf(w, "converted: %s -> %s\n", o.Task.SourcePath, o.Task.OutputPath)
		} else {
			fmt.Fprintf(w, "failed:    %s (%v)\n", o.Task.SourcePath, o.Err)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		r.Succeeded, r.Failed, r.Total())
}

func backendName(b types.ConverterBackend) string {
	if b == "" {
		return string(types.BackendMarkitdown)
	}
	return string(b)
}
