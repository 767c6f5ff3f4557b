package pipeline

import (
	"sync/atomic"

	"colorsplitter/layers"
	"colorsplitter/pixbuf"
)

// Session 持有最近一次量化结果。每次 Quantize 整体替换快照，
// 读取方拿到的总是某一次完整的结果，不会看到写了一半的状态。
type Session struct {
	current atomic.Pointer[State]
}

func NewSession() *Session {
	return &Session{}
}

// Quantize 量化并替换当前状态。失败时保留旧状态
func (s *Session) Quantize(src *pixbuf.Buffer, cfg Config) (*pixbuf.Buffer, pixbuf.Palette, error) {
	st, err := Run(src, cfg)
	if err != nil {
		return nil, nil, err
	}
	s.current.Store(st)
	return st.Image(), st.Palette(), nil
}

// State 当前快照，尚未量化时为 nil
func (s *Session) State() *State {
	return s.current.Load()
}

func (s *Session) ProcessedImage() (*pixbuf.Buffer, error) {
	st := s.current.Load()
	if st == nil {
		return nil, ErrNotQuantized
	}
	return st.ProcessedImage(), nil
}

func (s *Session) Layers(lowRes bool) ([]layers.Layer, error) {
	st := s.current.Load()
	if st == nil {
		return nil, ErrNotQuantized
	}
	return st.Layers(lowRes), nil
}
