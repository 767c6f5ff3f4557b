package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"strings"

	"colorsplitter/export"
	"colorsplitter/layer2svg"
	"colorsplitter/pipeline"
	"colorsplitter/pixbuf"
	"colorsplitter/quantize"
	"colorsplitter/svg2json"
	cstypes "colorsplitter/type"

	"github.com/spf13/cobra"
)

// addConfigFlags 量化相关的公共参数
func addConfigFlags(cmd *cobra.Command) {
	def := pipeline.DefaultConfig()
	cmd.Flags().IntP("colors", "c", def.Colors, "Number of colors to split to")
	cmd.Flags().Int("iterations", def.Iterations, "Clustering iteration budget")
	cmd.Flags().String("algorithm", "kmeans", "Clustering algorithm")
	cmd.Flags().Bool("rgb", false, "Cluster in RGB instead of the perceptual Lab space")
	cmd.Flags().Bool("remove-stray", def.RemoveStrayPixels, "Replace isolated single pixels with their dominant neighbour color")
	cmd.Flags().String("background", "", "Background color RRGGBB excluded from the palette")
}

func configFromFlags(cmd *cobra.Command) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	cfg.Colors, _ = cmd.Flags().GetInt("colors")
	cfg.Iterations, _ = cmd.Flags().GetInt("iterations")
	cfg.RemoveStrayPixels, _ = cmd.Flags().GetBool("remove-stray")

	algName, _ := cmd.Flags().GetString("algorithm")
	alg, err := quantize.ParseAlgorithm(algName)
	if err != nil {
		return cfg, err
	}
	cfg.Algorithm = alg

	if rgb, _ := cmd.Flags().GetBool("rgb"); rgb {
		cfg.ColorSpace = quantize.DirectRGB
	}

	if bg, _ := cmd.Flags().GetString("background"); bg != "" {
		c, err := pixbuf.ParseHex(bg)
		if err != nil {
			return cfg, fmt.Errorf("background: %w", err)
		}
		cfg.Background = c.Pixel(255)
	}
	return cfg, cfg.Validate()
}

// addExportFlags 导出相关的公共参数
func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output directory")
	cmd.Flags().Bool("svg", false, "Trace each layer to SVG and write a combined layers.svg")
	cmd.Flags().Bool("flip-y", false, "Write manifest path data in y-down image coordinates")
	cmd.Flags().String("bundle", "", "Also write everything into this zip file")
	cmd.Flags().String("s3-bucket", "", "Upload the zip bundle to this S3 bucket")
	cmd.Flags().String("s3-key", "layers.zip", "Object key for the S3 upload")
	cmd.Flags().String("s3-prefix", "", "Key prefix for the S3 upload")
	cmd.Flags().String("s3-region", "", "S3 region (defaults to the shared AWS config)")
	cmd.Flags().String("s3-endpoint", "", "Custom S3-compatible endpoint")
	cmd.MarkFlagRequired("output")
}

// loadImage 读取 PNG/JPEG/GIF，或 .bgra.zst 原始格式
func loadImage(p string) (*pixbuf.Buffer, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	defer f.Close()

	if strings.HasSuffix(p, ".bgra.zst") {
		b, err := pixbuf.ReadRaw(f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", p, err)
		}
		return b, nil
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", p, err)
	}
	return pixbuf.FromImage(img), nil
}

// addFrame 把一帧的图层、可选 SVG 加进 bundle，返回该帧的清单。
// 没有图层（全透明或全是背景色）时只返回空清单
func addFrame(cmd *cobra.Command, bundle *export.Bundle, prefix string, fl cstypes.FrameLayers) (cstypes.FrameData, error) {
	if len(fl.Layers) == 0 {
		return cstypes.FrameData{FrameIndex: fl.Index, Width: fl.Width, Height: fl.Height, Layers: []cstypes.LayerData{}}, nil
	}
	names, err := bundle.AddLayers(prefix, fl.Layers)
	if err != nil {
		return cstypes.FrameData{}, err
	}

	fd := cstypes.FrameData{FrameIndex: fl.Index, Width: fl.Width, Height: fl.Height}
	withSVG, _ := cmd.Flags().GetBool("svg")
	if withSVG {
		svgs, err := layer2svg.ConvertToSVG([]cstypes.FrameLayers{fl})
		if err != nil {
			return fd, fmt.Errorf("tracing: %w", err)
		}
		fs := svgs[0]
		paths := make([][]string, len(fs.Layers))
		for i, l := range fs.Layers {
			bundle.Add(path.Join(prefix, "layer_"+l.Tag+".svg"), []byte(l.SVGData))
			paths[i] = svg2json.ExtractPaths(l.SVGData)
		}

		var combined strings.Builder
		if err := layer2svg.WriteCombined(&combined, fs, paths); err != nil {
			return fd, err
		}
		bundle.Add(path.Join(prefix, "layers.svg"), []byte(combined.String()))

		fd = svg2json.ParseFrame(fs)
		if flip, _ := cmd.Flags().GetBool("flip-y"); flip && len(fs.Layers) > 0 {
			// 路径坐标是 1/10 像素，翻转高度也要乘 10
			box, err := svg2json.ViewBox(fs.Layers[0].SVGData)
			if err != nil {
				return fd, fmt.Errorf("reading viewBox: %w", err)
			}
			fd = svg2json.FlipFrame(fd, box[3]*10)
		}
	} else {
		for _, l := range fl.Layers {
			fd.Layers = append(fd.Layers, cstypes.LayerData{Color: l.Tag, Pixels: l.Pixels})
		}
	}
	for i := range fd.Layers {
		fd.Layers[i].File = path.Base(names[i])
	}
	return fd, nil
}

func addManifest(bundle *export.Bundle, frames []cstypes.FrameData) error {
	data, err := json.MarshalIndent(frames, "", "  ")
	if err != nil {
		return err
	}
	bundle.Add("manifest.json", data)
	return nil
}

// writeBundle 写目录，按需写 zip 和上传 S3
func writeBundle(cmd *cobra.Command, bundle *export.Bundle) error {
	outDir, _ := cmd.Flags().GetString("output")
	if err := bundle.WriteDir(outDir); err != nil {
		return err
	}

	if zipPath, _ := cmd.Flags().GetString("bundle"); zipPath != "" {
		err := writeFile(zipPath, func(f *os.File) error {
			return bundle.WriteZip(f)
		})
		if err != nil {
			return err
		}
		fmt.Printf("Bundle: %s\n", zipPath)
	}

	bucket, _ := cmd.Flags().GetString("s3-bucket")
	if bucket == "" {
		return nil
	}
	prefix, _ := cmd.Flags().GetString("s3-prefix")
	region, _ := cmd.Flags().GetString("s3-region")
	endpoint, _ := cmd.Flags().GetString("s3-endpoint")
	key, _ := cmd.Flags().GetString("s3-key")
	up, err := export.NewS3Uploader(export.S3Config{
		Bucket:   bucket,
		Prefix:   prefix,
		Region:   region,
		Endpoint: endpoint,
	})
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := bundle.Upload(ctx, up, key); err != nil {
		return err
	}
	fmt.Printf("Uploaded: s3://%s/%s\n", bucket, path.Join(prefix, key))
	return nil
}
