package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/prevalent/internal/colour"
	imgpkg "github.com/jmylchreest/prevalent/internal/image"
	"github.com/jmylchreest/prevalent/internal/pipeline"
	"github.com/jmylchreest/prevalent/internal/report"
)

type dominantOptions struct {
	pipelineFlags
	format  string
	preview bool
}

func newDominantCmd(global *globalOptions) *cobra.Command {
	opts := &dominantOptions{}

	cmd := &cobra.Command{
		Use:   "dominant <image|url>",
		Short: "Print the dominant colour names of an image",
		Long: `Print the names of the colours that cover the most pixels of an image.

The image is downscaled, clustered into --clusters colours and every cluster is
named from the colour catalog. Names are ranked by pixel coverage, ties in
alphabetical order. White is left out by default; pass --exclude= to keep it.

Examples:
  # Top 3 colours, ignoring a white background
  prevalent dominant photo.jpg

  # Top 5 colours, ignoring black and white
  prevalent dominant -n 5 -x White -x Black photo.jpg

  # Full analysis as JSON
  prevalent dominant --format json https://example.com/photo.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDominant(cmd, args[0], opts, global)
		},
	}

	opts.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour swatches (only on a terminal)")

	return cmd
}

func runDominant(cmd *cobra.Command, id string, opts *dominantOptions, global *globalOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format: %s (supported: text, json)", opts.format)
	}
	if err := imgpkg.ValidateImagePath(id); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	cfg, err := opts.config(cmd.Flags())
	if err != nil {
		return err
	}
	processor, err := pipeline.NewProcessor(cfg, colour.DefaultCatalog(), global.logger)
	if err != nil {
		return err
	}

	global.logger.Debug("loading image", "id", id)
	img, err := opts.loader().Load(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	analysis, err := processor.Analyse(img)
	if err != nil {
		return fmt.Errorf("failed to analyse image: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		data, err := json.MarshalIndent(struct {
			ID string `json:"id"`
			*pipeline.Analysis
		}{id, analysis}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	preview := opts.preview && isTerminal(out)
	if global.verbose {
		fmt.Fprint(out, rankTable(analysis.Ranked, processor.Catalog(), preview))
		fmt.Fprint(out, paletteText(analysis.Palette, preview))
	}
	return report.NewTextSink(out, processor.Catalog(), preview).Write(report.Record{
		ID:      id,
		Colours: analysis.Dominant,
	})
}

// rankTable renders ranked names with their pixel counts and shares.
func rankTable(ranked []colour.NameCount, catalog *colour.Catalog, preview bool) string {
	headers := []string{"Name", "Pixels", "Share"}
	if preview {
		headers = append([]string{""}, headers...)
	}
	table := NewTable(headers)
	offset := len(headers) - 3
	table.AlignRight(offset + 1)
	table.AlignRight(offset + 2)

	for _, r := range ranked {
		row := []string{r.Name, fmt.Sprintf("%d", r.Pixels), fmt.Sprintf("%.1f%%", r.Share*100)}
		if preview {
			swatch := ""
			if nc, ok := catalog.Lookup(r.Name); ok {
				swatch = colour.ColourPreview(nc.RGB, 4)
			}
			row = append([]string{swatch}, row...)
		}
		table.AddRow(row)
	}
	return table.Render()
}

// paletteText lists the populated clusters behind the ranking.
func paletteText(p *colour.Palette, preview bool) string {
	if !preview || p.Len() == 0 {
		return p.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Palette with %d colors:\n", p.Len())
	for _, s := range p.Swatches {
		fmt.Fprintf(&b, "  %s %5.1f%%\n", colour.FormatColourWithLabel(s.RGB, s.Name, 4), s.Weight*100)
	}
	return b.String()
}

// isTerminal reports whether w is a terminal, so ANSI output is only sent to screens.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
