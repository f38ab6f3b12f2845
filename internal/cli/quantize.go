package cli

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/prevalent/internal/colour"
	imgpkg "github.com/jmylchreest/prevalent/internal/image"
	"github.com/jmylchreest/prevalent/internal/pipeline"
)

type quantizeOptions struct {
	pipelineFlags
	output string
}

func newQuantizeCmd(global *globalOptions) *cobra.Command {
	opts := &quantizeOptions{}

	cmd := &cobra.Command{
		Use:   "quantize <image|url>",
		Short: "Recolour an image with its k-means palette",
		Long: `Downscale an image, cluster its colours and write a copy in which every
pixel takes the colour of its cluster. The result uses at most --clusters
colours. The output format follows the file extension (.png or .jpg).

Examples:
  prevalent quantize -o small.png photo.jpg
  prevalent quantize -k 4 --max-side 400 -o poster.png photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuantize(cmd, args[0], opts, global)
		},
	}

	opts.register(cmd.Flags(), false)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output image file (.png, .jpg)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runQuantize(cmd *cobra.Command, id string, opts *quantizeOptions, global *globalOptions) error {
	encode, err := encoderFor(opts.output)
	if err != nil {
		return err
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

	img, err := opts.loader().Load(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	small, err := processor.Downscale(img)
	if err != nil {
		return fmt.Errorf("failed to downscale image: %w", err)
	}
	quantized, err := processor.Quantize(small, cfg.K)
	if err != nil {
		return fmt.Errorf("failed to quantize image: %w", err)
	}

	f, err := os.Create(opts.output) // #nosec G304 - User-specified output path
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := encode(f, quantized); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	b := quantized.Bounds()
	global.logger.Info("wrote quantized image", "path", opts.output, "width", b.Dx(), "height", b.Dy(), "clusters", cfg.K)
	return nil
}

type encodeFunc func(f *os.File, img image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return func(f *os.File, img image.Image) error { return png.Encode(f, img) }, nil
	case ".jpg", ".jpeg":
		return func(f *os.File, img image.Image) error {
			return jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q (use .png or .jpg)", filepath.Ext(path))
	}
}
