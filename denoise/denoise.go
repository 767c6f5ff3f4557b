// Package denoise 去除量化结果中的孤立杂色像素。
package denoise

import "colorsplitter/pixbuf"

// neighbourCount 上下左右四邻域，颜色统计最多也只有这么多种
const neighbourCount = 4

// 扫描顺序：上、右、下、左。平票时先出现的颜色胜出，顺序不能改
var neighbourOffsets = [neighbourCount][2]int{
	{-1, 0},
	{0, 1},
	{1, 0},
	{0, -1},
}

// colorTally 按首次出现顺序记录颜色和次数
type colorTally struct {
	entries [neighbourCount]tallyEntry
	n       int
}

type tallyEntry struct {
	color pixbuf.Color
	count int
}

func (t *colorTally) add(c pixbuf.Color) {
	for i := 0; i < t.n; i++ {
		if t.entries[i].color == c {
			t.entries[i].count++
			return
		}
	}
	t.entries[t.n] = tallyEntry{color: c, count: 1}
	t.n++
}

// dominant 返回次数最多的颜色；平票取先出现的。
// 没有任何不透明邻居时返回零值颜色（黑色）。
func (t *colorTally) dominant() pixbuf.Color {
	best := tallyEntry{}
	for i := 0; i < t.n; i++ {
		if t.entries[i].count > best.count {
			best = t.entries[i]
		}
	}
	return best.color
}

// StrayPixels 把与四个邻居颜色都不同的像素替换成邻居中最多的颜色。
// 返回新缓冲区，不修改输入；边框像素原样保留，透明像素不处理。
// 所有邻居都从原图读取，因此同一行中已经替换过的像素不会影响后面的判断。
func StrayPixels(img *pixbuf.Buffer) *pixbuf.Buffer {
	out := img.Clone()

	width, height := img.Width(), img.Height()
	if width <= 2 || height <= 2 {
		return out
	}

	for row := 1; row < height-1; row++ {
		for col := 1; col < width-1; col++ {
			p := img.Get(row, col)
			if p.Transparent() {
				continue
			}
			if !isStray(img, row, col, p) {
				continue
			}

			var tally colorTally
			for _, off := range neighbourOffsets {
				n := img.Get(row+off[0], col+off[1])
				if n.Transparent() {
					continue
				}
				tally.add(n.Color())
			}
			// 保留原 alpha
			out.Set(row, col, tally.dominant().Pixel(p.A))
		}
	}

	return out
}

// isStray 邻居的 alpha 不参与比较
func isStray(img *pixbuf.Buffer, row, col int, p pixbuf.Pixel) bool {
	for _, off := range neighbourOffsets {
		if img.Get(row+off[0], col+off[1]).SameColor(p) {
			return false
		}
	}
	return true
}
