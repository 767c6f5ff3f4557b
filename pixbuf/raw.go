package pixbuf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/klauspost/compress/zstd"
)

// 原始格式：魔数 + 宽高（小端 uint32）+ zstd 压缩的 BGRA 数据
var rawMagic = [4]byte{'B', 'G', 'R', 'A'}

var ErrBadRawHeader = errors.New("not a raw BGRA stream")

// WriteRaw 把缓冲区按线格式写出
func WriteRaw(w io.Writer, b *Buffer) error {
	var hdr [12]byte
	copy(hdr[:4], rawMagic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(b.width))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(b.height))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(runtime.NumCPU()))
	if err != nil {
		return err
	}
	if _, err := enc.Write(b.pix); err != nil {
		enc.Close()
		return fmt.Errorf("compress pixels: %w", err)
	}
	return enc.Close()
}

// ReadRaw 读取 WriteRaw 写出的数据
func ReadRaw(r io.Reader) (*Buffer, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !bytes.Equal(hdr[:4], rawMagic[:]) {
		return nil, ErrBadRawHeader
	}
	width := int(binary.LittleEndian.Uint32(hdr[4:8]))
	height := int(binary.LittleEndian.Uint32(hdr[8:12]))
	n, ok := pixLen(width, height)
	if !ok {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrSizeMismatch)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	// 多读一个字节，数据比头部声明的长时由 FromBytes 报错
	pix, err := io.ReadAll(io.LimitReader(dec, int64(n)+1))
	if err != nil {
		return nil, fmt.Errorf("decompress pixels: %w", err)
	}
	return FromBytes(width, height, pix)
}
