package link

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"reelbot/internal/domain"
)

func TestParseInstagram_Reel(t *testing.T) {
	raw := "https://instagram.com/reel/ABC123/"
	got, err := ParseInstagram(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.ContentRef{Kind: domain.RefReel, Shortcode: "ABC123", RawURL: raw}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ref mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstagram_ReelWithoutTrailingSlash(t *testing.T) {
	got, err := ParseInstagram("https://www.instagram.com/reel/C1_x-Y?igsh=abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Shortcode != "C1_x-Y" {
		t.Errorf("expected C1_x-Y, got %q", got.Shortcode)
	}
}

func TestParseInstagram_ReelEmptyShortcode(t *testing.T) {
	_, err := ParseInstagram("https://instagram.com/reel/")
	if !errors.Is(err, ErrMalformedURL) {
		t.Fatalf("expected ErrMalformedURL, got %v", err)
	}
}

func TestParseInstagram_Generic(t *testing.T) {
	raw := "https://instagram.com/p/XYZ789/?utm=1"
	got, err := ParseInstagram(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.ContentRef{Kind: domain.RefGeneric, Shortcode: "XYZ789", RawURL: raw}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ref mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstagram_GenericVariants(t *testing.T) {
	cases := map[string]string{
		"https://instagram.com/p/XYZ789":             "XYZ789",
		"https://www.instagram.com/reels/R3el_s/":    "R3el_s",
		"https://www.instagram.com/tv/TV1/#comments": "TV1",
		"https://instagram.com/p/XYZ789/?a=1&b=2":    "XYZ789",
	}
	for raw, want := range cases {
		got, err := ParseInstagram(raw)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", raw, err)
			continue
		}
		if got.Kind != domain.RefGeneric || got.Shortcode != want {
			t.Errorf("%s: expected generic %q, got %s %q", raw, want, got.Kind, got.Shortcode)
		}
	}
}

func TestParseInstagram_GenericNoShortcode(t *testing.T) {
	for _, raw := range []string{"https://instagram.com/", "instagram.com", "see instagram.com/p/X/ later"} {
		if _, err := ParseInstagram(raw); !errors.Is(err, ErrMalformedURL) {
			t.Errorf("%q: expected ErrMalformedURL, got %v", raw, err)
		}
	}
}

func TestParseInstagram_Story(t *testing.T) {
	raw := "https://instagram.com/stories/someuser/123456789/?foo=1"
	got, err := ParseInstagram(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.ContentRef{Kind: domain.RefStory, Username: "someuser", MediaID: 123456789, RawURL: raw}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ref mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstagram_StoryIDWithQueryNoSlash(t *testing.T) {
	got, err := ParseInstagram("https://www.instagram.com/stories/u.name/3300000000000000001?igsh=x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Username != "u.name" || got.MediaID != 3300000000000000001 {
		t.Errorf("unexpected ref: %+v", got)
	}
}

func TestParseInstagram_StoryMalformed(t *testing.T) {
	for _, raw := range []string{
		"https://instagram.com/stories/someuser/",
		"https://instagram.com/stories/someuser/notanumber/",
		"instagram.com/stories/someuser/123/",
		"https://instagram.com/stories//123/",
	} {
		if _, err := ParseInstagram(raw); !errors.Is(err, ErrMalformedURL) {
			t.Errorf("%q: expected ErrMalformedURL, got %v", raw, err)
		}
	}
}
