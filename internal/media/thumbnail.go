package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ThumbnailGenerator extracts a single poster frame from a local video.
type ThumbnailGenerator struct {
	ffmpegPath string
	outputDir  string
	logger     zerolog.Logger
}

func NewThumbnailGenerator(outputDir string, logger zerolog.Logger) *ThumbnailGenerator {
	ffmpegPath := "ffmpeg"
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		ffmpegPath = path
	}

	return &ThumbnailGenerator{
		ffmpegPath: ffmpegPath,
		outputDir:  outputDir,
		logger:     logger,
	}
}

func (t *ThumbnailGenerator) IsAvailable() bool {
	_, err := exec.LookPath(t.ffmpegPath)
	return err == nil
}

// SeekOffset picks the frame position: 10% into the video capped at 5s,
// half way for very short clips.
func SeekOffset(duration time.Duration) time.Duration {
	offset := 5 * time.Second
	if duration <= 0 {
		return offset
	}
	if tenth := duration / 10; tenth > 0 && tenth < offset {
		offset = tenth
	}
	if offset > duration {
		offset = duration / 2
	}
	return offset
}

// Generate writes a JPEG to a fresh file in the output directory and
// returns its path. The caller owns the file.
func (t *ThumbnailGenerator) Generate(ctx context.Context, videoPath string, duration time.Duration) (string, error) {
	if err := os.MkdirAll(t.outputDir, 0755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(ThumbnailName(videoPath), ".jpg")
	f, err := os.CreateTemp(t.outputDir, base+"-*.jpg")
	if err != nil {
		return "", err
	}
	outputPath := f.Name()
	f.Close()

	// scale caps the width at 400px and keeps the aspect ratio
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-ss", fmt.Sprintf("%.3f", SeekOffset(duration).Seconds()),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", "scale=400:-1",
		"-q:v", "2",
		"-y",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.logger.Debug().
			Err(err).
			Str("video", videoPath).
			Str("output", string(output)).
			Msg("ffmpeg thumbnail generation failed")
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}

	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		os.Remove(outputPath)
		return "", fmt.Errorf("thumbnail file not created")
	}

	t.logger.Debug().
		Str("video", videoPath).
		Str("thumbnail", outputPath).
		Msg("thumbnail generated")

	return outputPath, nil
}
