package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prevalent/internal/colour"
)

func newCatalogCmd() *cobra.Command {
	var (
		format  string
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the colour names results are reported in",
		Long: `List every colour in the naming catalog with its reference value.

Cluster colours are named after the catalog entry closest in RGB. These names
are also accepted by --exclude.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := colour.DefaultCatalog()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				data, err := json.MarshalIndent(catalog.Swatches(), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to convert to JSON: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			case "table":
			default:
				return fmt.Errorf("unsupported format: %s (supported: table, json)", format)
			}

			showPreview := preview && isTerminal(out)
			headers := []string{"Name", "Hex", "RGB"}
			if showPreview {
				headers = append(headers, "Preview")
			}
			table := NewTable(headers)
			for _, s := range catalog.Swatches() {
				row := []string{s.Name, s.RGB.Hex(), s.RGB.String()}
				if showPreview {
					row = append(row, colour.ColourPreviewWithText(s.RGB, s.Name, 14))
				}
				table.AddRow(row)
			}
			_, err := fmt.Fprint(out, table.Render())
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	cmd.Flags().BoolVar(&preview, "preview", false, "show colour swatches (only on a terminal)")

	return cmd
}
