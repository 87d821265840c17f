// Package link decides which platform a pasted message belongs to and
// pulls media locators out of platform URLs.
package link

import (
	"strings"

	"reelbot/internal/domain"
)

// Classify picks a platform by plain, case-sensitive substring presence.
// It does not validate URL structure, so lookalike hosts such as
// myinstagram.com.evil.net classify as Instagram.
func Classify(text string) domain.PlatformKind {
	switch {
	case strings.Contains(text, "instagram.com"):
		return domain.Instagram
	case strings.Contains(text, "youtube.com"), strings.Contains(text, "youtu.be"):
		return domain.YouTube
	default:
		return domain.Unrecognized
	}
}
