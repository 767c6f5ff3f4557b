// Package export 收集导出的文件（图层 PNG、SVG、清单），写到目录、zip 包或 S3。
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"

	"colorsplitter/layers"
	"colorsplitter/logger"
	"colorsplitter/pixbuf"

	"github.com/klauspost/compress/zip"
)

var ErrNoLayers = errors.New("nothing to export")

// File 待导出的单个文件，Name 使用正斜杠分隔
type File struct {
	Name string
	Data []byte
}

// Bundle 按添加顺序保存文件
type Bundle struct {
	files []File
}

func NewBundle() *Bundle {
	return &Bundle{}
}

func (b *Bundle) Files() []File { return b.files }

func (b *Bundle) Len() int { return len(b.files) }

// Add 添加任意文件
func (b *Bundle) Add(name string, data []byte) {
	b.files = append(b.files, File{Name: path.Clean(name), Data: data})
}

// AddPNG 编码为 PNG 后添加
func (b *Bundle) AddPNG(name string, img *pixbuf.Buffer) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.ToNRGBA()); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	b.Add(name, buf.Bytes())
	return nil
}

// LayerFileName 图层文件名 layer_RRGGBB.png
func LayerFileName(prefix string, l layers.Layer) string {
	return path.Join(prefix, "layer_"+l.Tag+".png")
}

// AddLayers 每个图层一个 PNG，返回写入的文件名
func (b *Bundle) AddLayers(prefix string, ls []layers.Layer) ([]string, error) {
	if len(ls) == 0 {
		return nil, ErrNoLayers
	}
	names := make([]string, len(ls))
	for i, l := range ls {
		names[i] = LayerFileName(prefix, l)
		if err := b.AddPNG(names[i], l.Mask); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// WriteDir 写到本地目录，按需创建子目录
func (b *Bundle) WriteDir(dir string) error {
	for _, f := range b.files {
		p := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, f.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", p, err)
		}
	}
	logger.Logger().Info("exported files", "dir", dir, "count", len(b.files))
	return nil
}

// WriteZip 打包成 zip
func (b *Bundle) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, f := range b.files {
		fw, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("zip %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("zip %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

// ZipBytes 打包到内存
func (b *Bundle) ZipBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.WriteZip(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Upload 打包后上传
func (b *Bundle) Upload(ctx context.Context, up Uploader, key string) error {
	data, err := b.ZipBytes()
	if err != nil {
		return err
	}
	return up.Upload(ctx, key, bytes.NewReader(data))
}
