// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package video provides lexical helpers for YouTube URLs and elapsed-time
// display. See docs/ARCHITECTURE § Video Utilities.
package video

import (
	"fmt"
	"regexp"
)

// idPatterns are tried in order; the first capture wins. Each capture runs
// up to the next '&', '#', '?', or path separator. Covers watch (v=),
// youtu.be, live, embed, and shorts URL shapes.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`v=([^&#?/]+)`),
	regexp.MustCompile(`be/([^&#?/]+)`),
	regexp.MustCompile(`live/([^&#?/]+)`),
	regexp.MustCompile(`embed/([^&#?/]+)`),
	regexp.MustCompile(`shorts/([^&#?/]+)`),
}

// ExtractVideoID pulls the video identifier out of a YouTube URL. The match
// is purely lexical; no network validation is performed. The second return
// is false when no known URL shape matches.
func ExtractVideoID(url string) (string, bool) {
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// WithTimeOffset appends a start-time query parameter to a watch URL so the
// link opens the video at the given offset.
func WithTimeOffset(baseURL string, seconds int) string {
	return fmt.Sprintf("%s&t=%ds", baseURL, seconds)
}

// FormatTimestamp renders elapsed seconds as "[MM:SS]". Minutes never roll
// over into an hour component: 3661 renders as "[61:01]". Negative input is
// a caller error and clamps to zero.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("[%02d:%02d]", seconds/60, seconds%60)
}
