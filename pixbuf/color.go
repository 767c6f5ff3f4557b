package pixbuf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Color RGB 三元组，匹配时不看 alpha
type Color struct {
	R, G, B uint8
}

// Hex 返回大写的 RRGGBB
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// Pixel 以给定 alpha 生成像素
func (c Color) Pixel(alpha uint8) Pixel {
	return Pixel{B: c.B, G: c.G, R: c.R, A: alpha}
}

// ParseHex 解析 RRGGBB 或 #RRGGBB
func ParseHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// PaletteEntry 调色板里的一种颜色及其像素数
type PaletteEntry struct {
	Color Color
	Count int
}

// Palette 颜色唯一的有序列表
type Palette []PaletteEntry

// Index 线性查找颜色，找不到返回 -1
func (p Palette) Index(c Color) int {
	for i, e := range p {
		if e.Color == c {
			return i
		}
	}
	return -1
}

func (p Palette) Contains(c Color) bool {
	return p.Index(c) >= 0
}

// Total 所有颜色像素数之和
func (p Palette) Total() int {
	total := 0
	for _, e := range p {
		total += e.Count
	}
	return total
}

// Counts 转成 map，方便与只关心计数的调用方对接
func (p Palette) Counts() map[Color]int {
	m := make(map[Color]int, len(p))
	for _, e := range p {
		m[e.Color] += e.Count
	}
	return m
}

// Add 累加计数，颜色不存在时追加到末尾
func (p Palette) Add(c Color, n int) Palette {
	if i := p.Index(c); i >= 0 {
		p[i].Count += n
		return p
	}
	return append(p, PaletteEntry{Color: c, Count: n})
}

// Sort 按像素数降序，数量相同时按 RGB 升序
func (p Palette) Sort() {
	sort.Slice(p, func(i, j int) bool {
		if p[i].Count != p[j].Count {
			return p[i].Count > p[j].Count
		}
		return p[i].Color.key() < p[j].Color.key()
	})
}

func (c Color) key() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
