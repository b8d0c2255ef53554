package domain

import (
	"mime"
	"strings"
	"time"
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// Media describes an uploaded image in the media bucket.
type Media struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	SHA256      string    `json:"sha256,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ImageContentType returns the bare media type when raw names a supported image type.
func ImageContentType(raw string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	mediaType = strings.ToLower(mediaType)
	_, ok := imageTypes[mediaType]
	return mediaType, ok
}

// ImageExtension is the canonical file extension for a supported image type.
func ImageExtension(contentType string) string {
	return imageTypes[strings.ToLower(contentType)]
}
