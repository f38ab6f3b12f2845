package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prevalent/internal/colour"
	imgpkg "github.com/jmylchreest/prevalent/internal/image"
	"github.com/jmylchreest/prevalent/internal/pipeline"
	"github.com/jmylchreest/prevalent/internal/report"
)

type batchOptions struct {
	pipelineFlags
	input     string
	output    string
	format    string
	delimiter string
	dedupe    bool
}

func newBatchCmd(global *globalOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Find dominant colours for a list of images",
		Long: `Process a list of images or URLs and write one record per image.

The input is either a directory of images or a text file with one path or URL
per line. Blank lines and lines starting with '#' are skipped, and compressed
lists (.xz, .gz, .bz2) are read transparently. Records are written in input
order as "id;colour;colour;colour". An image that cannot be processed gets a
record without colours; the command only fails when every image failed.

Examples:
  prevalent batch -i urls.txt -o urls.csv
  prevalent batch -i urls.txt.xz --dedupe --workers 16 -o urls.csv
  prevalent batch -i ~/Pictures --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, opts, global)
		},
	}

	opts.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "list file or directory of images")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "output format (csv, text)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", string(report.DefaultDelimiter), "csv field delimiter")
	cmd.Flags().BoolVar(&opts.dedupe, "dedupe", false, "skip repeated entries in the list")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *batchOptions, global *globalOptions) error {
	cfg, err := opts.config(cmd.Flags())
	if err != nil {
		return err
	}
	processor, err := pipeline.NewProcessor(cfg, colour.DefaultCatalog(), global.logger)
	if err != nil {
		return err
	}

	ids, err := readInput(opts.input, opts.dedupe)
	if err != nil {
		return err
	}
	global.logger.Info("processing images", "count", len(ids), "workers", cfg.Workers)

	sink, err := openSink(cmd.OutOrStdout(), opts)
	if err != nil {
		return err
	}

	summary, runErr := pipeline.Batch(cmd.Context(), processor, opts.loader(), ids, sink, global.logger)
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	if opts.output != "-" {
		global.logger.Info("wrote results", "path", opts.output, "images", summary.Total, "failed", summary.Failed)
	}
	return nil
}

func readInput(input string, dedupe bool) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("failed to access input: %w", err)
	}
	if info.IsDir() {
		return imgpkg.ScanDirectoryForImages(input)
	}
	return report.ReadListFile(input, report.ListOptions{Dedupe: dedupe})
}

func openSink(stdout io.Writer, opts *batchOptions) (report.Sink, error) {
	var delim rune
	switch opts.format {
	case "csv":
		runes := []rune(opts.delimiter)
		if len(runes) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", opts.delimiter)
		}
		delim = runes[0]
	case "text":
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: csv, text)", opts.format)
	}

	// Hide stdout's Close so the sink leaves it open.
	w := io.Writer(struct{ io.Writer }{stdout})
	if opts.output != "-" {
		f, err := os.Create(opts.output) // #nosec G304 - User-specified output path
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		w = f
	}

	if opts.format == "text" {
		return report.NewTextSink(w, colour.DefaultCatalog(), false), nil
	}
	return report.NewCSVSink(w, report.WithDelimiter(delim)), nil
}
