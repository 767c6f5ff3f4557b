package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"colorsplitter/layers"
	"colorsplitter/pixbuf"

	"github.com/klauspost/compress/zip"
)

func testLayers() []layers.Layer {
	img := pixbuf.New(4, 2)
	for x := 0; x < 4; x++ {
		img.Set(0, x, pixbuf.Pixel{R: 255, A: 255})
		img.Set(1, x, pixbuf.Pixel{B: 255, A: 255})
	}
	return layers.Decompose(img, pixbuf.Palette{
		{Color: pixbuf.Color{R: 255}, Count: 4},
		{Color: pixbuf.Color{B: 255}, Count: 4},
	}, false)
}

func TestAddLayersNames(t *testing.T) {
	b := NewBundle()
	names, err := b.AddLayers("frame_0001", testLayers())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"frame_0001/layer_FF0000.png", "frame_0001/layer_0000FF.png"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if _, err := b.AddLayers("", nil); !errors.Is(err, ErrNoLayers) {
		t.Errorf("err = %v, want ErrNoLayers", err)
	}
}

func TestZipContents(t *testing.T) {
	b := NewBundle()
	if _, err := b.AddLayers("", testLayers()); err != nil {
		t.Fatal(err)
	}
	b.Add("manifest.json", []byte(`{}`))

	data, err := b.ZipBytes()
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if len(zr.File) != 3 {
		t.Fatalf("entries = %d, want 3", len(zr.File))
	}
	if zr.File[0].Name != "layer_FF0000.png" || zr.File[2].Name != "manifest.json" {
		t.Errorf("names = %s, %s", zr.File[0].Name, zr.File[2].Name)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	img, err := png.Decode(rc)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	got := pixbuf.FromImage(img)
	if got.Get(0, 0) != (pixbuf.Pixel{R: 255, A: 255}) || got.Get(1, 0) != (pixbuf.Pixel{}) {
		t.Errorf("layer pixels = %+v / %+v", got.Get(0, 0), got.Get(1, 0))
	}
}

func TestWriteDir(t *testing.T) {
	dir := t.TempDir()
	b := NewBundle()
	b.Add("a/b/c.txt", []byte("hello"))
	if err := b.WriteDir(dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.txt"))
	if err != nil || string(data) != "hello" {
		t.Errorf("read back %q, %v", data, err)
	}
}

type memUploader struct {
	key  string
	body []byte
}

func (m *memUploader) Upload(_ context.Context, key string, body io.Reader) error {
	m.key = key
	var err error
	m.body, err = io.ReadAll(body)
	return err
}

func TestUploadSendsZip(t *testing.T) {
	b := NewBundle()
	b.Add("x.txt", []byte("x"))
	up := &memUploader{}
	if err := b.Upload(context.Background(), up, "run/layers.zip"); err != nil {
		t.Fatal(err)
	}
	if up.key != "run/layers.zip" {
		t.Errorf("key = %q", up.key)
	}
	if len(up.body) < 4 || string(up.body[:2]) != "PK" {
		t.Error("uploaded body is not a zip archive")
	}
}

func TestNewS3UploaderNeedsBucket(t *testing.T) {
	if _, err := NewS3Uploader(S3Config{}); err == nil {
		t.Error("expected error without bucket")
	}
}
