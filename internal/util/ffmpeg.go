package util

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoInfo 视频元数据
type VideoInfo struct {
	Duration float64 `json:"duration"` // 秒
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// FFmpegAvailable 检查 ffprobe 是否在 PATH 中
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// ProbeVideo 读取课程视频的时长和分辨率
func ProbeVideo(videoPath string) (*VideoInfo, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file missing: %w", err)
	}

	out, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(out string) (*VideoInfo, error) {
	var result struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			Duration  string `json:"duration"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	info := &VideoInfo{}
	for _, stream := range result.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			info.Duration = d
		}
		break
	}

	// 容器时长优先于视频流时长
	if d, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil && d > 0 {
		info.Duration = d
	}
	return info, nil
}

// ExtractThumbnail 截取视频指定时间点的一帧作为课时缩略图
func ExtractThumbnail(videoPath, thumbnailPath, offset string) error {
	if err := os.MkdirAll(filepath.Dir(thumbnailPath), 0755); err != nil {
		return fmt.Errorf("create thumbnail dir: %w", err)
	}

	return ffmpeg.Input(videoPath, ffmpeg.KwArgs{"ss": offset}).
		Output(thumbnailPath, ffmpeg.KwArgs{
			"vframes": "1",
			"q:v":     "2",
		}).
		OverWriteOutput().
		Run()
}
