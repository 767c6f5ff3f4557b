package layer2svg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"colorsplitter/layers"
	"colorsplitter/logger"
	"colorsplitter/pixbuf"
	cstypes "colorsplitter/type"

	svgo "github.com/ajstarks/svgo"
	"github.com/gotranspile/gotrace"
)

// ConvertToSVG 使用 gotrace 将 FrameLayers 转成 SVG
func ConvertToSVG(frames []cstypes.FrameLayers) ([]cstypes.FrameSVG, error) {
	result := make([]cstypes.FrameSVG, len(frames))

	for fi, frame := range frames {
		layerSVGs, err := ConvertLayers(frame.Layers)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", frame.Index, err)
		}
		result[fi] = cstypes.FrameSVG{
			FrameIndex: frame.Index,
			Width:      frame.Width,
			Height:     frame.Height,
			Layers:     layerSVGs,
		}
	}

	return result, nil
}

// ConvertLayers 逐层描边
func ConvertLayers(ls []layers.Layer) ([]cstypes.LayerSVG, error) {
	out := make([]cstypes.LayerSVG, len(ls))
	for li, layer := range ls {
		svgStr, err := TraceMask(layer.Mask)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.Tag, err)
		}
		out[li] = cstypes.LayerSVG{
			Tag:     layer.Tag,
			Pixels:  layer.Pixels,
			SVGData: svgStr,
		}
		logger.Logger().Debug("layer traced", "color", layer.Tag, "bytes", len(svgStr))
	}
	return out, nil
}

// MaskToGray 黑白掩码图：黑=该颜色（不透明像素），白=其他
func MaskToGray(mask *pixbuf.Buffer) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, mask.Width(), mask.Height()))
	for y := 0; y < mask.Height(); y++ {
		for x := 0; x < mask.Width(); x++ {
			if mask.Get(y, x).Transparent() {
				gray.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return gray
}

// TraceMask 核心：使用 gotrace 将图层转 SVG 字符串
func TraceMask(mask *pixbuf.Buffer) (string, error) {
	gray := MaskToGray(mask)
	bm := gotrace.BitmapFromGray(gray, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	sz := gray.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// potrace 的路径坐标是 1/10 像素、y 轴向上，需要这个变换回到图像坐标
func traceTransform(height int) string {
	return fmt.Sprintf("translate(0,%d) scale(0.1,-0.1)", height)
}

// WriteCombined 把一帧的所有图层写成一个 SVG，每层一个 <g>，填充为图层颜色。
// paths 由调用方从各层 SVG 中提取（见 svg2json.ExtractPaths），与 frame.Layers 一一对应。
func WriteCombined(w io.Writer, frame cstypes.FrameSVG, paths [][]string) error {
	if len(paths) != len(frame.Layers) {
		return fmt.Errorf("got paths for %d layers, frame has %d", len(paths), len(frame.Layers))
	}

	canvas := svgo.New(w)
	canvas.Start(frame.Width, frame.Height)
	canvas.Title(fmt.Sprintf("frame %d", frame.FrameIndex))
	for i, layer := range frame.Layers {
		canvas.Group(
			fmt.Sprintf(`id="layer_%s"`, layer.Tag),
			fmt.Sprintf(`fill="#%s"`, layer.Tag),
			`stroke="none"`,
			fmt.Sprintf(`transform="%s"`, traceTransform(frame.Height)),
		)
		for _, d := range paths[i] {
			canvas.Path(d)
		}
		canvas.Gend()
	}
	canvas.End()
	return nil
}
