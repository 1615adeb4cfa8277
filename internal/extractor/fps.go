package extractor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/han-fei/appmon/internal/models"
	"github.com/han-fei/appmon/pkg/algorithm"
)

const (
	frameWindowSize = 120  // 保留的帧渲染时长数量
	frameAvgCount   = 60   // 计算均值时取最近的帧数
	maxFPS          = 60.0 // 帧率上限，过滤传感器噪声
)

// androidFPSExtractor Android帧率提取器
// 从gfxinfo解析帧渲染时长，滑动窗口保留最近120帧，
// 取最近60帧均值换算为FPS并钳制在60以内
type androidFPSExtractor struct {
	target *androidTarget
	frames *algorithm.SlidingWindow
}

func newAndroidFPSExtractor(t *androidTarget) *androidFPSExtractor {
	return &androidFPSExtractor{
		target: t,
		frames: algorithm.NewSlidingWindow(frameWindowSize),
	}
}

func (e *androidFPSExtractor) Name() string { return "fps" }

func (e *androidFPSExtractor) Extract(ctx context.Context, s *models.Sample) error {
	if e.target.packageName == "" {
		return nil
	}

	output, err := e.target.gw.Exec(ctx, "shell dumpsys gfxinfo "+e.target.packageName)
	if err != nil {
		return err
	}

	count := e.collectFrameTimes(output)
	if count == 0 && e.frames.Len() == 0 {
		return fmt.Errorf("fps: no frame stats in gfxinfo output")
	}

	recent := e.frames.Recent(frameAvgCount)
	if len(recent) == 0 {
		return nil
	}

	var sum float64
	for _, ms := range recent {
		sum += ms
	}
	mean := sum / float64(len(recent))
	if mean <= 0 {
		return nil
	}

	fps := 1000.0 / mean
	if fps > maxFPS {
		fps = maxFPS
	}
	s.FPS = fps
	return nil
}

// collectFrameTimes 解析帧统计段落中的渲染时长（毫秒）并写入窗口
func (e *androidFPSExtractor) collectFrameTimes(output string) int {
	inFrameStats := false
	count := 0

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "Total frames rendered:") {
			inFrameStats = true
			continue
		}
		if !inFrameStats {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ms, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || ms <= 0 {
			continue
		}

		e.frames.Add(ms)
		count++
		if count >= frameWindowSize {
			break
		}
	}
	return count
}
