package quantize

import (
	"math"
	"sort"

	"colorsplitter/logger"
	"colorsplitter/pixbuf"

	"github.com/lucasb-eyer/go-colorful"
)

// KMeans 以中位切分结果为初始中心的 k-means 颜色聚类。
// 聚类在唯一颜色的直方图上进行，每种颜色按出现次数加权。
type KMeans struct {
	opts Options
}

// NewKMeans 直接创建 KMeans，参数错误返回 ErrInvalidOptions
func NewKMeans(opts Options) (*KMeans, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &KMeans{opts: opts}, nil
}

func (k *KMeans) Quantize(src *pixbuf.Buffer) (*pixbuf.Buffer, pixbuf.Palette, error) {
	if err := k.opts.validate(); err != nil {
		return nil, nil, err
	}

	samples := k.histogram(src)
	out := pixbuf.New(src.Width(), src.Height())
	if len(samples) == 0 {
		return out, pixbuf.Palette{}, nil
	}

	centers := medianCut(samples, k.opts.Colors)
	assign := make([]int, len(samples))
	for i := range assign {
		assign[i] = -1
	}

	iterations := 0
	for iter := 0; iter < k.opts.Iterations; iter++ {
		if !assignNearest(samples, centers, assign) {
			break
		}
		centers = updateCenters(samples, centers, assign)
		iterations++
	}
	assignNearest(samples, centers, assign)

	// 中心转回 RGB，舍入后相同的中心合并
	mapping := make(map[pixbuf.Color]pixbuf.Color, len(samples))
	var palette pixbuf.Palette
	for i, s := range samples {
		c := k.toRGB(centers[assign[i]])
		mapping[s.color] = c
		palette = palette.Add(c, s.weight)
	}
	palette.Sort()

	for row := 0; row < src.Height(); row++ {
		for col := 0; col < src.Width(); col++ {
			p := src.Get(row, col)
			if k.skip(p) {
				continue
			}
			out.Set(row, col, mapping[p.Color()].Pixel(p.A))
		}
	}

	logger.Logger().Debug("kmeans quantized",
		"width", src.Width(), "height", src.Height(),
		"unique", len(samples), "colors", len(palette),
		"iterations", iterations, "space", k.opts.ColorSpace.String())
	return out, palette, nil
}

// skip 透明像素和背景色像素不参与聚类
func (k *KMeans) skip(p pixbuf.Pixel) bool {
	if p.Transparent() {
		return true
	}
	bg := k.opts.Background
	return !bg.Transparent() && p.SameColor(bg)
}

func (k *KMeans) histogram(src *pixbuf.Buffer) []sample {
	counts := make(map[pixbuf.Color]int)
	for row := 0; row < src.Height(); row++ {
		for col := 0; col < src.Width(); col++ {
			p := src.Get(row, col)
			if k.skip(p) {
				continue
			}
			counts[p.Color()]++
		}
	}

	samples := make([]sample, 0, len(counts))
	for c, n := range counts {
		samples = append(samples, sample{color: c, weight: n, v: k.toSpace(c)})
	}
	// map 遍历顺序随机，排序后结果才可复现
	sort.Slice(samples, func(i, j int) bool {
		a, b := samples[i].color, samples[j].color
		if a.R != b.R {
			return a.R < b.R
		}
		if a.G != b.G {
			return a.G < b.G
		}
		return a.B < b.B
	})
	return samples
}

func (k *KMeans) toSpace(c pixbuf.Color) [3]float64 {
	if k.opts.ColorSpace == DirectRGB {
		return [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	}
	l, a, b := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Lab()
	return [3]float64{l, a, b}
}

func (k *KMeans) toRGB(v [3]float64) pixbuf.Color {
	if k.opts.ColorSpace == DirectRGB {
		return pixbuf.Color{R: clamp8(v[0]), G: clamp8(v[1]), B: clamp8(v[2])}
	}
	r, g, b := colorful.Lab(v[0], v[1], v[2]).Clamped().RGB255()
	return pixbuf.Color{R: r, G: g, B: b}
}

func clamp8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// assignNearest 把每个样本分到最近的中心，返回是否有样本换了簇
func assignNearest(samples []sample, centers [][3]float64, assign []int) bool {
	changed := false
	for i, s := range samples {
		best := 0
		bestDist := math.MaxFloat64
		for j, c := range centers {
			d0 := s.v[0] - c[0]
			d1 := s.v[1] - c[1]
			d2 := s.v[2] - c[2]
			if dist := d0*d0 + d1*d1 + d2*d2; dist < bestDist {
				bestDist = dist
				best = j
			}
		}
		if assign[i] != best {
			assign[i] = best
			changed = true
		}
	}
	return changed
}

// updateCenters 重新计算加权平均，空簇被丢弃并重排 assign
func updateCenters(samples []sample, centers [][3]float64, assign []int) [][3]float64 {
	members := make([][]sample, len(centers))
	for i, s := range samples {
		members[assign[i]] = append(members[assign[i]], s)
	}

	next := make([][3]float64, 0, len(centers))
	remap := make([]int, len(centers))
	for j, m := range members {
		if len(m) == 0 {
			remap[j] = -1
			continue
		}
		remap[j] = len(next)
		next = append(next, weightedMean(m))
	}
	for i := range assign {
		assign[i] = remap[assign[i]]
	}
	return next
}
