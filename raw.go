package main

import (
	"fmt"
	"image/png"
	"os"

	"colorsplitter/pixbuf"

	"github.com/spf13/cobra"
)

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Convert between images and the zstd-compressed BGRA format",
}

var rawEncodeCmd = &cobra.Command{
	Use:   "encode <image> <out.bgra.zst>",
	Short: "Encode an image as .bgra.zst",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadImage(args[0])
		if err != nil {
			return err
		}
		return writeFile(args[1], func(f *os.File) error {
			return pixbuf.WriteRaw(f, b)
		})
	},
}

var rawDecodeCmd = &cobra.Command{
	Use:   "decode <in.bgra.zst> <out.png>",
	Short: "Decode a .bgra.zst file to PNG",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadImage(args[0])
		if err != nil {
			return err
		}
		return writeFile(args[1], func(f *os.File) error {
			return png.Encode(f, b.ToNRGBA())
		})
	},
}

func init() {
	rawCmd.AddCommand(rawEncodeCmd, rawDecodeCmd)
	rootCmd.AddCommand(rawCmd)
}

func writeFile(p string, write func(f *os.File) error) error {
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("creating %s: %w", p, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return f.Close()
}
