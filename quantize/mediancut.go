package quantize

import (
	"sort"

	"colorsplitter/pixbuf"
)

// sample 一种唯一颜色及其出现次数，v 是工作颜色空间中的坐标
type sample struct {
	color  pixbuf.Color
	weight int
	v      [3]float64
}

// box 颜色盒子
type box struct {
	samples    []sample
	RMin, RMax int
	GMin, GMax int
	BMin, BMax int
}

// 计算盒子范围
func (b *box) calculateRange() {
	if len(b.samples) == 0 {
		return
	}

	b.RMin, b.RMax = 255, 0
	b.GMin, b.GMax = 255, 0
	b.BMin, b.BMax = 255, 0

	for _, s := range b.samples {
		r, g, bl := int(s.color.R), int(s.color.G), int(s.color.B)
		b.RMin, b.RMax = min(b.RMin, r), max(b.RMax, r)
		b.GMin, b.GMax = min(b.GMin, g), max(b.GMax, g)
		b.BMin, b.BMax = min(b.BMin, bl), max(b.BMax, bl)
	}
}

func (b *box) maxRange() int {
	return max(b.RMax-b.RMin, b.GMax-b.GMin, b.BMax-b.BMin)
}

// 选择范围最大的通道
func (b *box) channel() int {
	rRange := b.RMax - b.RMin
	gRange := b.GMax - b.GMin
	bRange := b.BMax - b.BMin
	switch {
	case rRange >= gRange && rRange >= bRange:
		return 0
	case gRange >= rRange && gRange >= bRange:
		return 1
	default:
		return 2
	}
}

func channelValue(c pixbuf.Color, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// split 按加权中位数一分为二，两半都不为空
func (b *box) split() (*box, *box) {
	ch := b.channel()
	sort.SliceStable(b.samples, func(i, j int) bool {
		return channelValue(b.samples[i].color, ch) < channelValue(b.samples[j].color, ch)
	})

	total := 0
	for _, s := range b.samples {
		total += s.weight
	}
	medianIndex, acc := 1, 0
	for i, s := range b.samples {
		acc += s.weight
		if acc*2 >= total {
			medianIndex = i + 1
			break
		}
	}
	medianIndex = min(max(medianIndex, 1), len(b.samples)-1)

	box1 := &box{samples: append([]sample{}, b.samples[:medianIndex]...)}
	box2 := &box{samples: append([]sample{}, b.samples[medianIndex:]...)}
	box1.calculateRange()
	box2.calculateRange()
	return box1, box2
}

// medianCut 执行中位切分，返回每个盒子在工作空间中的加权平均值，用作 k-means 的初始中心
func medianCut(samples []sample, colorCount int) [][3]float64 {
	if len(samples) == 0 {
		return nil
	}
	initial := &box{samples: samples}
	initial.calculateRange()
	boxes := []*box{initial}

	// 不断分割盒子
	for len(boxes) < colorCount {
		splitIdx := -1
		maxRange := -1
		for i, b := range boxes {
			if len(b.samples) < 2 {
				continue
			}
			if r := b.maxRange(); r > maxRange {
				maxRange = r
				splitIdx = i
			}
		}
		if splitIdx < 0 {
			break
		}

		box1, box2 := boxes[splitIdx].split()
		boxes = append(boxes[:splitIdx], append([]*box{box1, box2}, boxes[splitIdx+1:]...)...)
	}

	centers := make([][3]float64, 0, len(boxes))
	for _, b := range boxes {
		centers = append(centers, weightedMean(b.samples))
	}
	return centers
}

func weightedMean(samples []sample) [3]float64 {
	var sum [3]float64
	total := 0.0
	for _, s := range samples {
		w := float64(s.weight)
		sum[0] += s.v[0] * w
		sum[1] += s.v[1] * w
		sum[2] += s.v[2] * w
		total += w
	}
	if total == 0 {
		return sum
	}
	return [3]float64{sum[0] / total, sum[1] / total, sum[2] / total}
}
