// Package youtube maps the URL shapes people paste for a YouTube video to one canonical descriptor.
package youtube

import (
	"regexp"
	"strings"
)

type Quality string

const (
	QualityDefault Quality = "default"
	QualityMedium  Quality = "mqdefault"
	QualityHigh    Quality = "hqdefault"
	QualitySD      Quality = "sddefault"
	QualityMaxRes  Quality = "maxresdefault"
)

type VideoInfo struct {
	VideoID      string `json:"videoId"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	EmbedURL     string `json:"embedUrl"`
}

// Checked in order; the first match wins.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([^&\n?#]+)`),
	regexp.MustCompile(`(?:youtu\.be/)([^&\n?#]+)`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`(?:youtube\.com/v/)([^&\n?#]+)`),
	regexp.MustCompile(`(?:youtube\.com/live/)([^&\n?#]+)`),
}

// ExtractID returns the video id of the first matching pattern.
func ExtractID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, p := range patterns {
		if m := p.FindStringSubmatch(raw); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

func Parse(raw string) (VideoInfo, bool) {
	id, ok := ExtractID(raw)
	if !ok {
		return VideoInfo{}, false
	}
	return VideoInfo{
		VideoID:      id,
		URL:          "https://www.youtube.com/watch?v=" + id,
		ThumbnailURL: thumbnailURL(id, QualityMaxRes),
		EmbedURL:     "https://www.youtube.com/embed/" + id,
	}, true
}

// Thumbnail returns the thumbnail URL at quality q; an empty quality means maxres.
func Thumbnail(raw string, q Quality) (string, bool) {
	id, ok := ExtractID(raw)
	if !ok {
		return "", false
	}
	if q == "" {
		q = QualityMaxRes
	}
	return thumbnailURL(id, q), true
}

func IsValid(raw string) bool {
	_, ok := ExtractID(raw)
	return ok
}

func (q Quality) Valid() bool {
	switch q {
	case QualityDefault, QualityMedium, QualityHigh, QualitySD, QualityMaxRes:
		return true
	}
	return false
}

func thumbnailURL(id string, q Quality) string {
	return "https://img.youtube.com/vi/" + id + "/" + string(q) + ".jpg"
}
