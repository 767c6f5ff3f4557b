package quantize

import (
	"errors"
	"testing"

	"colorsplitter/pixbuf"
)

// makeGradient 生成颜色丰富的测试图
func makeGradient(w, h int) *pixbuf.Buffer {
	b := pixbuf.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(y, x, pixbuf.Pixel{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) * 3),
				A: 255,
			})
		}
	}
	return b
}

func TestNewRejectsBadOptions(t *testing.T) {
	for _, opts := range []Options{
		{Colors: 0, Iterations: 4},
		{Colors: 4, Iterations: -1},
	} {
		if _, err := New(AlgorithmKMeans, opts); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("New(%+v) err = %v, want ErrInvalidOptions", opts, err)
		}
	}
	if _, err := New(Algorithm(7), Options{Colors: 4}); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("err = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestParseAlgorithm(t *testing.T) {
	if a, err := ParseAlgorithm("kmeans"); err != nil || a != AlgorithmKMeans {
		t.Errorf("ParseAlgorithm(kmeans) = %v, %v", a, err)
	}
	if _, err := ParseAlgorithm("octree"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("err = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestKMeansPaletteContract(t *testing.T) {
	src := makeGradient(40, 30)
	for _, space := range []ColorSpace{Perceptual, DirectRGB} {
		t.Run(space.String(), func(t *testing.T) {
			q, err := New(AlgorithmKMeans, Options{Colors: 6, Iterations: 4, ColorSpace: space})
			if err != nil {
				t.Fatal(err)
			}
			out, pal, err := q.Quantize(src)
			if err != nil {
				t.Fatalf("Quantize: %v", err)
			}
			if out.Width() != src.Width() || out.Height() != src.Height() {
				t.Fatalf("size = %dx%d", out.Width(), out.Height())
			}
			if len(pal) == 0 || len(pal) > 6 {
				t.Fatalf("palette size = %d, want 1..6", len(pal))
			}
			if pal.Total() != 40*30 {
				t.Errorf("palette total = %d, want %d", pal.Total(), 40*30)
			}

			counts := make(map[pixbuf.Color]int)
			for y := 0; y < out.Height(); y++ {
				for x := 0; x < out.Width(); x++ {
					p := out.Get(y, x)
					if !pal.Contains(p.Color()) {
						t.Fatalf("pixel (%d,%d) color %s not in palette", y, x, p.Color().Hex())
					}
					if p.A != 255 {
						t.Fatalf("alpha changed at (%d,%d)", y, x)
					}
					counts[p.Color()]++
				}
			}
			for _, e := range pal {
				if counts[e.Color] != e.Count {
					t.Errorf("count for %s = %d, palette says %d", e.Color.Hex(), counts[e.Color], e.Count)
				}
			}
			for i := 1; i < len(pal); i++ {
				if pal[i].Count > pal[i-1].Count {
					t.Errorf("palette not sorted by count at %d", i)
				}
			}
		})
	}
}

func TestKMeansExactColorsSurvive(t *testing.T) {
	red := pixbuf.Pixel{R: 255, A: 255}
	blue := pixbuf.Pixel{B: 255, A: 200}
	src := pixbuf.New(4, 2)
	for x := 0; x < 4; x++ {
		src.Set(0, x, red)
		src.Set(1, x, blue)
	}
	src.Set(1, 3, red)

	q, _ := NewKMeans(Options{Colors: 2, Iterations: 4, ColorSpace: DirectRGB})
	out, pal, err := q.Quantize(src)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Equal(src) {
		t.Error("two-color image should quantize to itself")
	}
	want := pixbuf.Palette{{Color: red.Color(), Count: 5}, {Color: blue.Color(), Count: 3}}
	if len(pal) != 2 || pal[0] != want[0] || pal[1] != want[1] {
		t.Errorf("palette = %+v, want %+v", pal, want)
	}
}

func TestKMeansTransparentAndBackground(t *testing.T) {
	src := pixbuf.New(3, 1)
	src.Set(0, 0, pixbuf.Pixel{R: 10, G: 20, B: 30, A: 0})
	src.Set(0, 1, pixbuf.Pixel{R: 255, G: 255, B: 255, A: 255})
	src.Set(0, 2, pixbuf.Pixel{R: 200, A: 255})

	q, _ := NewKMeans(Options{
		Colors:     4,
		Iterations: 2,
		Background: pixbuf.Pixel{R: 255, G: 255, B: 255, A: 255},
	})
	out, pal, err := q.Quantize(src)
	if err != nil {
		t.Fatal(err)
	}
	if out.Get(0, 0) != (pixbuf.Pixel{}) {
		t.Errorf("transparent pixel = %+v, want zero", out.Get(0, 0))
	}
	if out.Get(0, 1) != (pixbuf.Pixel{}) {
		t.Errorf("background pixel = %+v, want zero", out.Get(0, 1))
	}
	if len(pal) != 1 || pal[0].Count != 1 {
		t.Errorf("palette = %+v, want one entry with count 1", pal)
	}
}

func TestKMeansEmptyImage(t *testing.T) {
	q, _ := NewKMeans(Options{Colors: 12, Iterations: 4})
	out, pal, err := q.Quantize(pixbuf.New(0, 5))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Empty() || len(pal) != 0 {
		t.Errorf("got %dx%d and %d colors", out.Width(), out.Height(), len(pal))
	}
}

func TestKMeansDeterministic(t *testing.T) {
	src := makeGradient(25, 25)
	q, _ := NewKMeans(Options{Colors: 5, Iterations: 4})
	a, pa, _ := q.Quantize(src)
	b, pb, _ := q.Quantize(src)
	if !a.Equal(b) {
		t.Error("quantized images differ between runs")
	}
	if len(pa) != len(pb) {
		t.Fatal("palette sizes differ between runs")
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Errorf("palette[%d] differs: %+v vs %+v", i, pa[i], pb[i])
		}
	}
}

func TestMedianCutSplitsDistinctColors(t *testing.T) {
	samples := []sample{
		{color: pixbuf.Color{R: 0}, weight: 1, v: [3]float64{0, 0, 0}},
		{color: pixbuf.Color{R: 100}, weight: 1, v: [3]float64{100, 0, 0}},
		{color: pixbuf.Color{R: 200}, weight: 1, v: [3]float64{200, 0, 0}},
	}
	centers := medianCut(samples, 8)
	if len(centers) != 3 {
		t.Fatalf("centers = %d, want 3 (one per unique color)", len(centers))
	}
}
