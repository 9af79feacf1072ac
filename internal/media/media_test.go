package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormats(t *testing.T) {
	assert.True(t, IsSupportedVideo("Dune.MP4"))
	assert.True(t, IsSupportedVideo("show.mkv"))
	assert.False(t, IsSupportedVideo("poster.jpg"))
	assert.False(t, IsSupportedVideo("README"))

	assert.Equal(t, "video/mp4", GetContentType("a.m4v"))
	assert.Equal(t, "image/jpeg", GetContentType("thumb.JPG"))
	assert.Equal(t, "application/octet-stream", GetContentType("notes.txt"))

	assert.Equal(t, "Dune Part Two-thumb.jpg", ThumbnailName("/videos/Dune Part Two.mp4"))
}

func TestSeekOffset(t *testing.T) {
	assert.Equal(t, 5*time.Second, SeekOffset(0))
	assert.Equal(t, 5*time.Second, SeekOffset(2*time.Hour))
	assert.Equal(t, 3*time.Second, SeekOffset(30*time.Second))
	assert.Equal(t, 100*time.Millisecond, SeekOffset(time.Second))
}

func TestParseProbe(t *testing.T) {
	out := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
			{"codec_type": "audio", "codec_name": "aac"},
			{"codec_type": "audio", "codec_name": "ac3"}
		],
		"format": {"duration": "596.474000"}
	}`)

	meta, err := parseProbe(out)
	require.NoError(t, err)
	assert.Equal(t, 596474*time.Millisecond, meta.Duration)
	assert.Equal(t, "H264", meta.VideoCodec)
	assert.Equal(t, "AAC", meta.AudioCodec)
	assert.Equal(t, "1920x1080", meta.Resolution())

	_, err = parseProbe([]byte("not json"))
	assert.Error(t, err)
}

// fakeFFmpeg writes "generated" to the last argument, like ffmpeg's output.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor a; do out=$a; done\necho generated > \"$out\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestThumbnailGenerator_LeavesExistingFilesAlone(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "clip-thumb.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("user file"), 0o644))

	gen := NewThumbnailGenerator(dir, zerolog.Nop())
	gen.ffmpegPath = fakeFFmpeg(t)

	first, err := gen.Generate(context.Background(), "/home/u/videos/clip.mp4", 0)
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), "/other/clip.mp4", 0)
	require.NoError(t, err)

	assert.NotEqual(t, existing, first)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(filepath.Base(first), "clip-thumb-"))
	assert.Equal(t, ".jpg", filepath.Ext(first))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "user file", string(data))

	data, err = os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "generated\n", string(data))
}
