package svg2json

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"sync"

	cstypes "colorsplitter/type"

	"github.com/rustyoz/svg"
)

func ParseAllFrame(frames []cstypes.FrameSVG) []cstypes.FrameData {

	results := make([]cstypes.FrameData, len(frames))

	var wg sync.WaitGroup
	for i, f := range frames {
		wg.Add(1)
		go func(idx int, frame cstypes.FrameSVG) {
			defer wg.Done()
			results[idx] = ParseFrame(frame)
		}(i, f)
	}

	wg.Wait()

	return results
}

// ParseFrame 接收 FrameSVG，返回封装好的 FrameData
func ParseFrame(frame cstypes.FrameSVG) cstypes.FrameData {
	result := make([]cstypes.LayerData, 0, len(frame.Layers))

	for _, layer := range frame.Layers {
		paths := ExtractPaths(layer.SVGData)
		result = append(result, cstypes.LayerData{
			Color:    layer.Tag,
			Pixels:   layer.Pixels,
			PathData: strings.Join(paths, " "),
		})
	}

	return cstypes.FrameData{
		FrameIndex: frame.FrameIndex,
		Width:      frame.Width,
		Height:     frame.Height,
		Layers:     result,
	}
}

// ParseFrameJSON 返回 JSON 字符串
func ParseFrameJSON(frame cstypes.FrameSVG) ([]byte, error) {
	fd := ParseFrame(frame)
	return json.MarshalIndent([]cstypes.FrameData{fd}, "", "  ")
}

// ExtractPaths 从 SVG 字符串中提取所有 <path> 的 d 属性（包括 <g> 里面的）
func ExtractPaths(data string) []string {
	dec := xml.NewDecoder(strings.NewReader(data))
	var paths []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "path" {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "d" {
				paths = append(paths, attr.Value)
			}
		}
	}
	return paths
}

// ViewBox 读取 SVG 的 viewBox（x, y, w, h）
func ViewBox(data string) ([4]float64, error) {
	var box [4]float64
	parsed, err := svg.ParseSvg(data, "layer", 1.0)
	if err != nil {
		return box, err
	}
	split := strings.Fields(strings.ReplaceAll(parsed.ViewBox, ",", " "))
	if len(split) != 4 {
		return box, fmt.Errorf("unexpected viewBox %q", parsed.ViewBox)
	}
	for idx, s := range split {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return box, fmt.Errorf("viewBox %q: %w", parsed.ViewBox, err)
		}
		box[idx] = v
	}
	return box, nil
}
