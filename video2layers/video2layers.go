package video2layers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"colorsplitter/logger"
	"colorsplitter/pipeline"
	"colorsplitter/pixbuf"
	cstypes "colorsplitter/type"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var ErrNoFrames = errors.New("no frames extracted")

// ExtractOptions 抽帧参数
type ExtractOptions struct {
	FPS      int
	MaxWidth int       // 0 表示保持原宽度
	Stderr   io.Writer // ffmpeg 的日志输出，nil 时丢弃
}

// VideoProbe 只关心视频流
type VideoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		NbFrames     string `json:"nb_frames"`      // 有些视频是字符串
		AvgFrameRate string `json:"avg_frame_rate"` // fallback
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// TotalFrames 从 probe 数据解析总帧数
func TotalFrames(videoPath string) (int, error) {
	probeStr, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}
	return parseTotalFrames(probeStr)
}

func parseTotalFrames(probeStr string) (int, error) {
	var probe VideoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return 0, fmt.Errorf("json unmarshal error: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if stream.NbFrames != "" && stream.NbFrames != "0" {
			// nb_frames 存在则直接返回
			if n, err := strconv.Atoi(stream.NbFrames); err == nil {
				return n, nil
			}
		}
		// 如果 nb_frames 不存在，则使用 avg_frame_rate * duration 估算
		if stream.AvgFrameRate != "" && stream.AvgFrameRate != "0/0" {
			parts := strings.Split(stream.AvgFrameRate, "/")
			if len(parts) == 2 {
				num, _ := strconv.ParseFloat(parts[0], 64)
				den, _ := strconv.ParseFloat(parts[1], 64)
				dur, _ := strconv.ParseFloat(stream.Duration, 64)
				if den != 0 && dur > 0 {
					return int(math.Round(num / den * dur)), nil
				}
			}
		}
	}

	return 0, fmt.Errorf("no video stream found or cannot determine frame count")
}

// ExtractFrames 用 ffmpeg 把视频按 fps 输出为 PNG 流并逐帧解码
func ExtractFrames(ctx context.Context, videoPath string, opts ExtractOptions) ([]cstypes.Frame, error) {
	if opts.FPS <= 0 {
		opts.FPS = 1
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	args := ffmpeg.KwArgs{
		"format": "image2pipe",
		"vcodec": "png",
		"r":      strconv.Itoa(opts.FPS),
	}
	if opts.MaxWidth > 0 {
		args["vf"] = fmt.Sprintf("scale=%d:-1", opts.MaxWidth)
	}

	r, w := io.Pipe()
	cmd := ffmpeg.Input(videoPath).
		Output("pipe:1", args).
		WithOutput(w).
		WithErrorOutput(opts.Stderr)
	cmd.Context = ctx

	// ffmpeg 往管道里写，必须边写边读，否则会阻塞
	runErr := make(chan error, 1)
	go func() {
		err := cmd.Run()
		w.CloseWithError(err)
		runErr <- err
	}()

	var frames []cstypes.Frame
	reader := bufio.NewReader(r)
	index := 0
	var decodeErr error
	for {
		if _, err := reader.Peek(1); err != nil {
			break
		}
		img, _, err := image.Decode(reader)
		if err != nil {
			decodeErr = fmt.Errorf("decode frame %d failed: %w", index, err)
			break
		}
		frames = append(frames, cstypes.Frame{Index: index, Image: pixbuf.FromImage(img)})
		index++
	}
	// 解码出错时 ffmpeg 可能还在写，读空管道让它退出
	_, _ = io.Copy(io.Discard, r)

	if err := <-runErr; err != nil {
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	logger.Logger().Info("frames extracted", "video", videoPath, "count", len(frames))
	return frames, nil
}

// SplitFrame 量化一帧并拆成图层
func SplitFrame(frame cstypes.Frame, cfg pipeline.Config, lowRes bool) (cstypes.FrameLayers, error) {
	if frame.Image == nil {
		return cstypes.FrameLayers{}, errors.New("nil image")
	}
	st, err := pipeline.Run(frame.Image, cfg)
	if err != nil {
		return cstypes.FrameLayers{}, fmt.Errorf("frame %d: %w", frame.Index, err)
	}

	ls := st.Layers(lowRes)
	w, h := frame.Image.Width(), frame.Image.Height()
	if lowRes && len(ls) > 0 {
		w, h = ls[0].Mask.Width(), ls[0].Mask.Height()
	}
	return cstypes.FrameLayers{
		Index:   frame.Index,
		Width:   w,
		Height:  h,
		Palette: st.Palette(),
		Layers:  ls,
	}, nil
}

// SplitAllFrames 对多帧进行颜色分层（并行版），parallel 限制同时处理的帧数
func SplitAllFrames(frames []cstypes.Frame, cfg pipeline.Config, lowRes bool, parallel int) ([]cstypes.FrameLayers, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if parallel <= 0 {
		parallel = 1
	}

	results := make([]cstypes.FrameLayers, len(frames))
	errs := make(chan error, len(frames))
	sem := make(chan struct{}, parallel)

	var wg sync.WaitGroup
	for i, f := range frames {
		wg.Add(1)
		go func(idx int, frame cstypes.Frame) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			layers, err := SplitFrame(frame, cfg, lowRes)
			if err != nil {
				errs <- err
				return
			}
			results[idx] = layers
			logger.Logger().Debug("frame split", "frame", frame.Index, "colors", len(layers.Palette))
		}(i, f)
	}

	wg.Wait()
	close(errs)

	// 返回第一个错误（如果有）
	for err := range errs {
		return nil, err
	}
	return results, nil
}
