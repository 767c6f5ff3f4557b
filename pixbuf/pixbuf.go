package pixbuf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// BytesPerPixel 每个像素 4 字节 (B, G, R, A)
const BytesPerPixel = 4

var ErrSizeMismatch = errors.New("pixel data length does not match dimensions")

// Pixel 一个 BGRA8888 像素
type Pixel struct {
	B, G, R, A uint8
}

// Color 只取 RGB，用于颜色匹配
func (p Pixel) Color() Color {
	return Color{R: p.R, G: p.G, B: p.B}
}

// SameColor 比较 RGB，忽略 alpha
func (p Pixel) SameColor(q Pixel) bool {
	return p.R == q.R && p.G == q.G && p.B == q.B
}

func (p Pixel) Transparent() bool {
	return p.A == 0
}

// Buffer 是连续的 BGRA 像素缓冲区，行跨度固定为 Width*4，没有行填充
type Buffer struct {
	width  int
	height int
	pix    []uint8
}

// pixLen 返回 w*h*4，尺寸为负或乘积溢出 int 时 ok 为 false
func pixLen(width, height int) (n int, ok bool) {
	if width < 0 || height < 0 || width > math.MaxInt/BytesPerPixel {
		return 0, false
	}
	if width != 0 && height > math.MaxInt/(width*BytesPerPixel) {
		return 0, false
	}
	return width * height * BytesPerPixel, true
}

// New 创建 w x h 的全透明缓冲区。负尺寸按 0 处理，w*h*4 溢出时 panic
func New(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n, ok := pixLen(width, height)
	if !ok {
		panic(fmt.Sprintf("pixbuf: %dx%d is too large", width, height))
	}
	return &Buffer{
		width:  width,
		height: height,
		pix:    make([]uint8, n),
	}
}

// FromBytes 复制一段 BGRA 数据，长度必须正好是 w*h*4
func FromBytes(width, height int, pix []uint8) (*Buffer, error) {
	if n, ok := pixLen(width, height); !ok || len(pix) != n {
		return nil, fmt.Errorf("%dx%d with %d bytes: %w", width, height, len(pix), ErrSizeMismatch)
	}
	b := New(width, height)
	copy(b.pix, pix)
	return b, nil
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Stride 一行的字节数
func (b *Buffer) Stride() int { return b.width * BytesPerPixel }

// Bytes 返回底层 BGRA 数据（不复制）
func (b *Buffer) Bytes() []uint8 { return b.pix }

// Empty 面积为 0
func (b *Buffer) Empty() bool { return b.width == 0 || b.height == 0 }

func (b *Buffer) inside(row, col int) bool {
	return row >= 0 && row < b.height && col >= 0 && col < b.width
}

// Get 越界时返回零像素
func (b *Buffer) Get(row, col int) Pixel {
	if !b.inside(row, col) {
		return Pixel{}
	}
	i := (row*b.width + col) * BytesPerPixel
	return Pixel{B: b.pix[i], G: b.pix[i+1], R: b.pix[i+2], A: b.pix[i+3]}
}

// Set 越界时忽略
func (b *Buffer) Set(row, col int, p Pixel) {
	if !b.inside(row, col) {
		return
	}
	i := (row*b.width + col) * BytesPerPixel
	b.pix[i] = p.B
	b.pix[i+1] = p.G
	b.pix[i+2] = p.R
	b.pix[i+3] = p.A
}

// Clone 深拷贝
func (b *Buffer) Clone() *Buffer {
	c := New(b.width, b.height)
	copy(c.pix, b.pix)
	return c
}

// Equal 尺寸和全部字节都相同
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.width != o.width || b.height != o.height {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// ResizeNearest 最近邻缩放，不做插值，像素按原样复制
func (b *Buffer) ResizeNearest(width, height int) *Buffer {
	dst := New(width, height)
	if b.Empty() || dst.Empty() {
		return dst
	}
	// 最近邻只搬运整像素的 4 个字节，与通道顺序无关，所以可以把 BGRA 当成 RGBA 看待
	draw.NearestNeighbor.Scale(dst.rawView(), dst.rawView().Bounds(), b.rawView(), b.rawView().Bounds(), draw.Src, nil)
	return dst
}

func (b *Buffer) rawView() *image.RGBA {
	return &image.RGBA{
		Pix:    b.pix,
		Stride: b.Stride(),
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

// FromImage 把任意 image.Image 转成 BGRA（非预乘 alpha）
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy())

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.height; y++ {
			row := src.Pix[(y+bounds.Min.Y-src.Rect.Min.Y)*src.Stride+(bounds.Min.X-src.Rect.Min.X)*4:]
			for x := 0; x < b.width; x++ {
				s := row[x*4 : x*4+4]
				b.Set(y, x, Pixel{B: s[2], G: s[1], R: s[0], A: s[3]})
			}
		}
		return b
	}

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			b.Set(y, x, Pixel{B: c.B, G: c.G, R: c.R, A: c.A})
		}
	}
	return b
}

// ToNRGBA 转成标准库图像，方便编码 PNG
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for i := 0; i < len(b.pix); i += BytesPerPixel {
		img.Pix[i] = b.pix[i+2]
		img.Pix[i+1] = b.pix[i+1]
		img.Pix[i+2] = b.pix[i]
		img.Pix[i+3] = b.pix[i+3]
	}
	return img
}

// At 实现 image.Image
func (b *Buffer) At(x, y int) color.Color {
	p := b.Get(y, x)
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

func (b *Buffer) ColorModel() color.Model {
	return color.NRGBAModel
}
