package main

import (
	"errors"
	"fmt"

	"colorsplitter/export"
	"colorsplitter/layers"
	"colorsplitter/logger"
	"colorsplitter/pipeline"
	"colorsplitter/pixbuf"
	cstypes "colorsplitter/type"

	"github.com/spf13/cobra"
)

var errVerify = errors.New("layers do not reconstruct the quantized image")

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Quantize an image and write one layer per palette color",
	RunE:  runSplit,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Write 64x64 low-resolution layer previews",
	RunE:  runSplit,
}

func init() {
	for _, cmd := range []*cobra.Command{splitCmd, previewCmd} {
		cmd.Flags().StringP("input", "i", "", "Input image (PNG, JPEG, GIF or .bgra.zst)")
		cmd.MarkFlagRequired("input")
		addConfigFlags(cmd)
		addExportFlags(cmd)
	}
	splitCmd.Flags().Bool("low-res", false, "Downscale layers to 64x64")
	splitCmd.Flags().Bool("verify", false, "Check that the layers reassemble the quantized image")
	rootCmd.AddCommand(splitCmd, previewCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	lowRes := cmd.Name() == "preview"
	if !lowRes {
		lowRes, _ = cmd.Flags().GetBool("low-res")
	}

	src, err := loadImage(input)
	if err != nil {
		return err
	}

	session := pipeline.NewSession()
	quantized, palette, err := session.Quantize(src, cfg)
	if err != nil {
		return err
	}
	processed, err := session.ProcessedImage()
	if err != nil {
		return err
	}
	ls, err := session.Layers(lowRes)
	if err != nil {
		return err
	}

	if verify, _ := cmd.Flags().GetBool("verify"); verify && !lowRes {
		if err := verifyLayers(quantized, ls); err != nil {
			return err
		}
		logger.Logger().Info("layers verified", "layers", len(ls))
	}

	bundle := export.NewBundle()
	if !lowRes {
		if err := bundle.AddPNG("processed.png", processed); err != nil {
			return err
		}
	}

	fl := cstypes.FrameLayers{
		Width:   src.Width(),
		Height:  src.Height(),
		Palette: palette,
		Layers:  ls,
	}
	if lowRes {
		fl.Width, fl.Height = layers.PreviewSize, layers.PreviewSize
	}
	fd, err := addFrame(cmd, bundle, "", fl)
	if err != nil {
		return err
	}
	if err := addManifest(bundle, []cstypes.FrameData{fd}); err != nil {
		return err
	}
	if err := writeBundle(cmd, bundle); err != nil {
		return err
	}

	for _, e := range palette {
		fmt.Printf("#%s  %d\n", e.Color.Hex(), e.Count)
	}
	return nil
}

// verifyLayers 图层叠回后必须与量化图一致
func verifyLayers(quantized *pixbuf.Buffer, ls []layers.Layer) error {
	back := layers.Composite(ls, quantized.Width(), quantized.Height())
	if !back.Equal(quantized) {
		return errVerify
	}
	return nil
}
