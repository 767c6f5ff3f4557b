// Package layers 把量化后的图像按调色板拆成每种颜色一张的透明图层。
package layers

import (
	"colorsplitter/logger"
	"colorsplitter/pixbuf"
)

// PreviewSize 低分辨率预览的边长
const PreviewSize = 64

// Layer 单色图层：匹配的像素保留原色和 alpha，其余全透明
type Layer struct {
	Mask  *pixbuf.Buffer
	Color pixbuf.Color
	// Tag 大写 RRGGBB
	Tag string
	// Pixels 图层中匹配的像素数（缩放后可能为 0）
	Pixels int
}

// Decompose 每个调色板颜色生成一个图层，顺序与调色板一致。
// lowRes 时先用最近邻缩放到 64x64。缩放后某个颜色可能完全消失，此时仍然输出一个全透明图层。
func Decompose(img *pixbuf.Buffer, palette pixbuf.Palette, lowRes bool) []Layer {
	if len(palette) == 0 || img.Empty() {
		return nil
	}

	src := img
	if lowRes {
		src = img.ResizeNearest(PreviewSize, PreviewSize)
	}

	result := make([]Layer, 0, len(palette))
	for _, e := range palette {
		mask, n := Extract(src, e.Color)
		result = append(result, Layer{
			Mask:   mask,
			Color:  e.Color,
			Tag:    e.Color.Hex(),
			Pixels: n,
		})
		logger.Logger().Debug("layer extracted", "color", e.Color.Hex(), "pixels", n, "lowRes", lowRes)
	}
	return result
}

// Extract 取出 RGB 等于 c 的像素，alpha 不参与比较。返回图层和匹配像素数
func Extract(src *pixbuf.Buffer, c pixbuf.Color) (*pixbuf.Buffer, int) {
	out := pixbuf.New(src.Width(), src.Height())
	n := 0
	for row := 0; row < src.Height(); row++ {
		for col := 0; col < src.Width(); col++ {
			p := src.Get(row, col)
			if p.Color() == c {
				out.Set(row, col, p)
				n++
			}
		}
	}
	return out, n
}

// Composite 把图层叠回一张图：每个位置取第一个不透明的图层像素。
// 调色板无损划分图像时，结果与量化图完全一致。
func Composite(layers []Layer, width, height int) *pixbuf.Buffer {
	out := pixbuf.New(width, height)
	for _, l := range layers {
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				p := l.Mask.Get(row, col)
				if p.Transparent() || !out.Get(row, col).Transparent() {
					continue
				}
				out.Set(row, col, p)
			}
		}
	}
	return out
}
