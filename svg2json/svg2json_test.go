package svg2json

import (
	"encoding/json"
	"testing"

	cstypes "colorsplitter/type"
)

const layerSVG = `<?xml version="1.0" standalone="no"?>
<svg version="1.0" xmlns="http://www.w3.org/2000/svg" width="32" height="16" viewBox="0 0 32 16">
<g transform="translate(0,16) scale(0.1,-0.1)" fill="#000000" stroke="none">
<path d="M80 40 l0 80 160 0 0 -80 -160 0z"/>
<path d="M10 10 L20 20z"/>
</g>
</svg>`

func TestExtractPaths(t *testing.T) {
	paths := ExtractPaths(layerSVG)
	if len(paths) != 2 {
		t.Fatalf("paths = %d, want 2", len(paths))
	}
	if paths[1] != "M10 10 L20 20z" {
		t.Errorf("paths[1] = %q", paths[1])
	}
	if got := ExtractPaths("not xml"); len(got) != 0 {
		t.Errorf("garbage input gave %v", got)
	}
}

func TestParseFrame(t *testing.T) {
	frame := cstypes.FrameSVG{
		FrameIndex: 2,
		Width:      32,
		Height:     16,
		Layers: []cstypes.LayerSVG{
			{Tag: "FF0000", Pixels: 10, SVGData: layerSVG},
			{Tag: "00FF00", Pixels: 0, SVGData: `<svg xmlns="http://www.w3.org/2000/svg"></svg>`},
		},
	}
	fd := ParseFrame(frame)
	if fd.FrameIndex != 2 || fd.Width != 32 || len(fd.Layers) != 2 {
		t.Fatalf("FrameData = %+v", fd)
	}
	if fd.Layers[0].Color != "FF0000" || fd.Layers[0].PathData != "M80 40 l0 80 160 0 0 -80 -160 0z M10 10 L20 20z" {
		t.Errorf("layer 0 = %+v", fd.Layers[0])
	}
	if fd.Layers[1].PathData != "" {
		t.Errorf("empty layer path = %q", fd.Layers[1].PathData)
	}

	raw, err := ParseFrameJSON(frame)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []cstypes.FrameData
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Layers[0].Pixels != 10 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestParseAllFrameKeepsOrder(t *testing.T) {
	frames := make([]cstypes.FrameSVG, 10)
	for i := range frames {
		frames[i] = cstypes.FrameSVG{FrameIndex: i}
	}
	for i, fd := range ParseAllFrame(frames) {
		if fd.FrameIndex != i {
			t.Errorf("result %d has frame index %d", i, fd.FrameIndex)
		}
	}
}

func TestViewBox(t *testing.T) {
	box, err := ViewBox(layerSVG)
	if err != nil {
		t.Fatalf("ViewBox: %v", err)
	}
	if box != [4]float64{0, 0, 32, 16} {
		t.Errorf("box = %v", box)
	}
}

func TestFlipPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"M10 20 L30 40z", "M 10 80 L 30 60 z"},
		{"m10 20 l30 40", "m 10 -20 l 30 -40"},
		{"M0 0 H50 V25", "M 0 100 H 50 V 75"},
		{"M1,2 3,4", "M 1 98 3 96"},
		{"c1 2 3 4 5 6", "c 1 -2 3 -4 5 -6"},
		{"M0 0 A5 10 30 0 1 20 40", "M 0 100 A 5 10 -30 0 0 20 60"},
		{"a5 10 -45 1 0 20 40", "a 5 10 45 1 1 20 -40"},
		{"A5 5 0 0 1 10 10", "A 5 5 0 0 0 10 90"},
	}
	for _, tt := range tests {
		if got := FlipPath(tt.in, 100); got != tt.want {
			t.Errorf("FlipPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFlipPathTwiceIsIdentity(t *testing.T) {
	d := "M80 40 l0 80 160 0 0 -80 -160 0z"
	once := FlipPath(d, 16)
	twice := FlipPath(once, 16)
	if twice != FlipPath(FlipPath(twice, 16), 16) {
		t.Errorf("flip is not an involution: %q", twice)
	}
	if twice != "M 80 40 l 0 80 160 0 0 -80 -160 0 z" {
		t.Errorf("double flip = %q", twice)
	}
}

func TestFlipFrame(t *testing.T) {
	fd := cstypes.FrameData{Layers: []cstypes.LayerData{{Color: "FF0000", PathData: "M0 0"}}}
	got := FlipFrame(fd, 10)
	if got.Layers[0].PathData != "M 0 10" {
		t.Errorf("flipped = %q", got.Layers[0].PathData)
	}
	if fd.Layers[0].PathData != "M0 0" {
		t.Error("FlipFrame modified its input")
	}
}
