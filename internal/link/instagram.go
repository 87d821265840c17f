package link

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/match"

	"reelbot/internal/domain"
)

// ErrMalformedURL is returned when an Instagram link does not have the
// shape its sub-kind requires.
var ErrMalformedURL = errors.New("malformed instagram url")

var shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParseInstagram derives a ContentRef from an Instagram URL.
//
// Reel links take the text between /reel/ and the next slash. Story links
// are parsed positionally as scheme://host/stories/<username>/<id>, so the
// username is path-split index 4 and the numeric story id index 5. Every
// other link uses the last segment before the trailing slash or query.
func ParseInstagram(raw string) (domain.ContentRef, error) {
	switch {
	case match.Match(raw, "*/reel/*"):
		return parseReel(raw)
	case match.Match(raw, "*/stories/*"):
		return parseStory(raw)
	default:
		return parseGeneric(raw)
	}
}

func parseReel(raw string) (domain.ContentRef, error) {
	_, rest, _ := strings.Cut(raw, "/reel/")
	code := cutAny(rest, "/?#")
	if !shortcodePattern.MatchString(code) {
		return domain.ContentRef{}, fmt.Errorf("%w: reel shortcode %q", ErrMalformedURL, code)
	}
	return domain.ContentRef{Kind: domain.RefReel, Shortcode: code, RawURL: raw}, nil
}

func parseStory(raw string) (domain.ContentRef, error) {
	parts := strings.Split(raw, "/")
	if len(parts) < 6 || parts[3] != "stories" {
		return domain.ContentRef{}, fmt.Errorf("%w: story link %q", ErrMalformedURL, raw)
	}
	username := parts[4]
	if username == "" {
		return domain.ContentRef{}, fmt.Errorf("%w: story link without username", ErrMalformedURL)
	}
	idPart, _, _ := strings.Cut(parts[5], "?")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return domain.ContentRef{}, fmt.Errorf("%w: story id %q: %v", ErrMalformedURL, idPart, err)
	}
	return domain.ContentRef{Kind: domain.RefStory, Username: username, MediaID: id, RawURL: raw}, nil
}

func parseGeneric(raw string) (domain.ContentRef, error) {
	trimmed := strings.TrimRight(cutAny(raw, "?#"), "/")
	code := trimmed
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		code = trimmed[i+1:]
	}
	if !shortcodePattern.MatchString(code) {
		return domain.ContentRef{}, fmt.Errorf("%w: no shortcode in %q", ErrMalformedURL, raw)
	}
	return domain.ContentRef{Kind: domain.RefGeneric, Shortcode: code, RawURL: raw}, nil
}

// cutAny returns s up to the first byte contained in stops.
func cutAny(s, stops string) string {
	if i := strings.IndexAny(s, stops); i >= 0 {
		return s[:i]
	}
	return s
}
