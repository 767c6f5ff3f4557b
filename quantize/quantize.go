package quantize

import (
	"errors"
	"fmt"

	"colorsplitter/pixbuf"
)

var (
	ErrInvalidOptions   = errors.New("invalid quantizer options")
	ErrUnknownAlgorithm = errors.New("unknown quantization algorithm")
)

// Algorithm 聚类策略，目前只有 KMeans
type Algorithm int

const (
	AlgorithmKMeans Algorithm = iota
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmKMeans:
		return "kmeans"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm 解析命令行上的算法名
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "kmeans", "k-means", "":
		return AlgorithmKMeans, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownAlgorithm)
}

// ColorSpace 距离计算所在的颜色空间
type ColorSpace int

const (
	// Perceptual 在 CIE Lab 中计算距离
	Perceptual ColorSpace = iota
	// DirectRGB 直接用 RGB 欧氏距离
	DirectRGB
)

func (c ColorSpace) String() string {
	if c == DirectRGB {
		return "rgb"
	}
	return "lab"
}

// Options 量化参数
type Options struct {
	Colors     int
	Iterations int
	ColorSpace ColorSpace
	// Background alpha 为 0 表示未设置；设置后与其 RGB 相同的像素视为背景
	Background pixbuf.Pixel
}

func (o Options) validate() error {
	if o.Colors < 1 {
		return fmt.Errorf("colors %d: %w", o.Colors, ErrInvalidOptions)
	}
	if o.Iterations < 0 {
		return fmt.Errorf("iterations %d: %w", o.Iterations, ErrInvalidOptions)
	}
	return nil
}

// Quantizer 把图像颜色聚成不超过 Colors 种，返回量化图和每种颜色的像素数。
// 实现必须是纯函数：不修改输入，不保留对输出的引用。
type Quantizer interface {
	Quantize(src *pixbuf.Buffer) (*pixbuf.Buffer, pixbuf.Palette, error)
}

// New 按算法创建量化器
func New(alg Algorithm, opts Options) (Quantizer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	switch alg {
	case AlgorithmKMeans:
		return &KMeans{opts: opts}, nil
	}
	return nil, fmt.Errorf("%v: %w", alg, ErrUnknownAlgorithm)
}
