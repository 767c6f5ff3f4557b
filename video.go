package main

import (
	"fmt"
	"os"
	"time"

	"colorsplitter/export"
	"colorsplitter/logger"
	cstypes "colorsplitter/type"
	"colorsplitter/video2layers"

	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Extract frames from a video with ffmpeg and split every frame into layers",
	RunE:  runVideo,
}

func init() {
	videoCmd.Flags().StringP("input", "i", "", "Input video file")
	videoCmd.MarkFlagRequired("input")
	videoCmd.Flags().Int("fps", 10, "Frames per second")
	videoCmd.Flags().Int("width", 0, "Maximum frame width, 0 keeps the source width")
	videoCmd.Flags().Int("parallel", 4, "Frames processed at the same time")
	videoCmd.Flags().Bool("low-res", false, "Downscale layers to 64x64")
	videoCmd.Flags().Bool("ffmpeg-log", false, "Show ffmpeg output")
	addConfigFlags(videoCmd)
	addExportFlags(videoCmd)
	rootCmd.AddCommand(videoCmd)
}

func runVideo(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	fps, _ := cmd.Flags().GetInt("fps")
	width, _ := cmd.Flags().GetInt("width")
	parallel, _ := cmd.Flags().GetInt("parallel")
	lowRes, _ := cmd.Flags().GetBool("low-res")
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	if total, err := video2layers.TotalFrames(input); err == nil {
		logger.Logger().Info("probed video", "frames", total)
	} else {
		logger.Logger().Warn("probe failed", "err", err)
	}

	opts := video2layers.ExtractOptions{FPS: fps, MaxWidth: width}
	if showLog, _ := cmd.Flags().GetBool("ffmpeg-log"); showLog {
		opts.Stderr = os.Stderr
	}
	frames, err := video2layers.ExtractFrames(cmd.Context(), input, opts)
	if err != nil {
		return fmt.Errorf("extracting frames: %w", err)
	}

	frameLayers, err := video2layers.SplitAllFrames(frames, cfg, lowRes, parallel)
	if err != nil {
		return fmt.Errorf("splitting frames: %w", err)
	}

	bundle := export.NewBundle()
	manifest := make([]cstypes.FrameData, 0, len(frameLayers))
	for _, fl := range frameLayers {
		fd, err := addFrame(cmd, bundle, fmt.Sprintf("frame_%04d", fl.Index), fl)
		if err != nil {
			return fmt.Errorf("frame %d: %w", fl.Index, err)
		}
		manifest = append(manifest, fd)
	}
	if err := addManifest(bundle, manifest); err != nil {
		return err
	}
	if err := writeBundle(cmd, bundle); err != nil {
		return err
	}

	fmt.Printf("Frames: %d, files: %d, time: %s\n", len(frameLayers), bundle.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}
