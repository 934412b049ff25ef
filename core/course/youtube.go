package course

import (
	"regexp"

	"github.com/gosimple/slug"
)

var youTubeIDRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([\w-]{6,})`),
	regexp.MustCompile(`(?:youtu\.be/)([\w-]{6,})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([\w-]{6,})`),
}

// ExtractYouTubeID pulls the video identifier out of a YouTube URL.
// It recognizes watch, short and embed links; anything else yields "".
func ExtractYouTubeID(url string) string {
	for _, re := range youTubeIDRegexes {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// YouTubeThumbnailURL returns the max resolution thumbnail for a video ID.
func YouTubeThumbnailURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg"
}

// Slugify derives a URL-safe slug from a title. Non-latin titles are
// transliterated so unicode course names still produce stable slugs.
func Slugify(title string) string { return slug.Make(title) }
