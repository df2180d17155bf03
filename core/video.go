package core

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrNoVideoID reports that no 11-character YouTube video identifier could be
// extracted from an input URL. This is the only hard validation gate of the
// intake pipeline; everything after extraction is best-effort.
var ErrNoVideoID = errors.New("no YouTube video ID found in URL")

// FallbackVideoTitle is used whenever the title lookup degrades; unlisted and
// private videos are accepted, so a missing title is never an error.
const FallbackVideoTitle = "Video YouTube"

// videoIDRegex matches the identifier position of the supported URL shapes:
// watch?v=, youtu.be/, embed/, legacy /v/ and /u/<c>/ forms, and &v= params.
var videoIDRegex = regexp.MustCompile(`(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*)`)

// ExtractVideoID extracts the video ID from the various YouTube URL formats.
// When several markers appear, the last one decides, so a stray v= earlier in
// the query string cannot shadow the real identifier.
func ExtractVideoID(rawURL string) (string, error) {
	matches := videoIDRegex.FindAllStringSubmatch(strings.TrimSpace(rawURL), -1)
	if len(matches) == 0 {
		return "", ErrNoVideoID
	}
	id := matches[len(matches)-1][2]
	if len(id) != 11 {
		return "", ErrNoVideoID
	}
	return id, nil
}

// Video privacy hints. "unknown" is reported whenever the lookup degraded.
const (
	PrivacyPublic  = "public"
	PrivacyUnknown = "unknown"
)

// VideoMeta is the best-effort result of a title lookup. Degraded marks a
// fallback value so callers cannot mistake degradation for failure.
type VideoMeta struct {
	VideoID  string
	Title    string
	Privacy  string
	Degraded bool
}

// MetadataService is any service that can resolve a video ID into a title.
// Resolve never fails: on any error it returns a usable fallback VideoMeta.
type MetadataService interface {
	Resolve(ctx context.Context, videoID string) VideoMeta
}
