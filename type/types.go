package cstypes

import (
	"colorsplitter/layers"
	"colorsplitter/pixbuf"
)

// Frame 表示一帧图像
type Frame struct {
	Index int
	Image *pixbuf.Buffer
}

// FrameLayers 表示某一帧的分层结果
type FrameLayers struct {
	Index   int
	Width   int
	Height  int
	Palette pixbuf.Palette
	Layers  []layers.Layer
}

// LayerSVG 表示单个颜色图层的 SVG
type LayerSVG struct {
	Tag     string // 颜色 HEX（如 "FF0000"）
	Pixels  int
	SVGData string
}

// FrameSVG 表示一帧所有颜色层的 SVG
type FrameSVG struct {
	FrameIndex int
	Width      int
	Height     int
	Layers     []LayerSVG
}

// LayerData 清单中的单个图层
type LayerData struct {
	Color    string `json:"color"`
	Pixels   int    `json:"pixels"`
	File     string `json:"file,omitempty"`
	PathData string `json:"pathdata,omitempty"`
}

// FrameData 封装输出的数据结构
type FrameData struct {
	FrameIndex int         `json:"frameIndex"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Layers     []LayerData `json:"layers"`
}
