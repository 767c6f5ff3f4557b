package pipeline

import (
	"errors"
	"fmt"

	"colorsplitter/denoise"
	"colorsplitter/layers"
	"colorsplitter/logger"
	"colorsplitter/pixbuf"
	"colorsplitter/quantize"
)

var ErrNotQuantized = errors.New("no quantization result yet")

// Config 一次量化所需的全部配置，按值传递，调用之间不共享
type Config struct {
	Colors            int // 目标颜色数
	Iterations        int // 聚类迭代上限
	Algorithm         quantize.Algorithm
	ColorSpace        quantize.ColorSpace
	RemoveStrayPixels bool
	// Background alpha 为 0 表示未设置
	Background pixbuf.Pixel
}

// DefaultConfig 12 色、4 次迭代、Lab 距离、不去杂色、无背景色
func DefaultConfig() Config {
	return Config{
		Colors:     12,
		Iterations: 4,
		Algorithm:  quantize.AlgorithmKMeans,
		ColorSpace: quantize.Perceptual,
	}
}

func (c Config) Validate() error {
	if c.Colors < 1 || c.Colors > 256 {
		return fmt.Errorf("colors must be in 1..256, got %d", c.Colors)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	return nil
}

func (c Config) quantizerOptions() quantize.Options {
	return quantize.Options{
		Colors:     c.Colors,
		Iterations: c.Iterations,
		ColorSpace: c.ColorSpace,
		Background: c.Background,
	}
}

// State 一次量化的结果，创建后不再修改
type State struct {
	image   *pixbuf.Buffer
	palette pixbuf.Palette
	config  Config
}

// Run 校验配置并量化，返回新的 State。输入图像不会被修改
func Run(src *pixbuf.Buffer, cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	q, err := quantize.New(cfg.Algorithm, cfg.quantizerOptions())
	if err != nil {
		return nil, fmt.Errorf("quantizer: %w", err)
	}

	img, palette, err := q.Quantize(src)
	if err != nil {
		return nil, fmt.Errorf("quantize: %w", err)
	}
	logger.Logger().Info("quantized",
		"width", src.Width(), "height", src.Height(),
		"colors", len(palette), "algorithm", cfg.Algorithm.String())

	return &State{
		image:   img,
		palette: append(pixbuf.Palette(nil), palette...),
		config:  cfg,
	}, nil
}

// Image 返回量化图的副本
func (s *State) Image() *pixbuf.Buffer { return s.image.Clone() }

// Palette 返回调色板的副本
func (s *State) Palette() pixbuf.Palette {
	return append(pixbuf.Palette(nil), s.palette...)
}

func (s *State) Config() Config { return s.config }

// ProcessedImage 开启 RemoveStrayPixels 时返回去杂色后的图，否则返回量化图的副本。每次调用都重新计算
func (s *State) ProcessedImage() *pixbuf.Buffer {
	if s.config.RemoveStrayPixels {
		return denoise.StrayPixels(s.image)
	}
	return s.image.Clone()
}

// Layers 从量化图拆出每种颜色的图层
func (s *State) Layers(lowRes bool) []layers.Layer {
	return layers.Decompose(s.image, s.palette, lowRes)
}
