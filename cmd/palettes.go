package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"oniazusa/internal/processor"
	"oniazusa/internal/style"
	"oniazusa/internal/tui"
)

var (
	extractSize   int
	extractMethod string
)

var palettesCmd = &cobra.Command{
	Use:   "palettes",
	Short: "List the built-in palette presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range style.PresetNames() {
			pal, err := style.Preset(name)
			if err != nil {
				return err
			}
			label := name
			if name == style.DefaultPreset {
				label += "*"
			}
			fmt.Fprintln(os.Stdout, tui.RenderSwatches(label, pal.Hex()))
		}
		return nil
	},
}

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Palette utilities",
}

var paletteExtractCmd = &cobra.Command{
	Use:   "extract [flags] <image>",
	Short: "Derive a palette from a reference image",
	Long: "Derive a palette from a reference image and print it as a comma-separated\n" +
		"hex list, suitable for --palette or the palette_colors config key.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pal, err := extractPalette(args[0], extractSize, extractMethod)
		if err != nil {
			return err
		}
		hexes := pal.Hex()
		fmt.Fprintln(os.Stdout, tui.RenderSwatches("extracted", hexes))
		fmt.Fprintln(os.Stdout, strings.Join(hexes, ","))
		return nil
	},
}

func extractPalette(path string, k int, method string) (*style.Palette, error) {
	m, err := style.ParseExtractMethod(method)
	if err != nil {
		return nil, err
	}
	img, err := processor.FileDecoder{}.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	pal, err := style.ExtractPalette(img.ToNRGBA(), k, m)
	if err != nil {
		return nil, err
	}
	logger.WithField("method", m.String()).Debugf("extracted %d colors from %s", pal.Len(), path)
	return pal, nil
}

func init() {
	paletteExtractCmd.Flags().IntVarP(&extractSize, "colors", "k", 8, "number of colors to extract")
	paletteExtractCmd.Flags().StringVar(&extractMethod, "method", "dominant", "extraction method: dominant or kmeans")

	paletteCmd.AddCommand(paletteExtractCmd)
	rootCmd.AddCommand(palettesCmd, paletteCmd)
}
