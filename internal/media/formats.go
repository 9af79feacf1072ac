package media

import (
	"path/filepath"
	"strings"
)

var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
}

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func IsSupportedVideo(filename string) bool {
	_, ok := videoContentTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// GetContentType maps a file name to the MIME type sent with its upload.
func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := videoContentTypes[ext]; ok {
		return ct
	}
	if ct, ok := imageContentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ThumbnailName is the object name a generated thumbnail is stored under.
func ThumbnailName(videoName string) string {
	base := strings.TrimSuffix(filepath.Base(videoName), filepath.Ext(videoName))
	return base + "-thumb.jpg"
}
