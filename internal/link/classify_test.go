package link

import (
	"strings"
	"testing"

	"reelbot/internal/domain"
)

func TestClassify_Instagram(t *testing.T) {
	for _, text := range []string{
		"https://instagram.com/reel/ABC123/",
		"https://www.instagram.com/stories/someuser/123/",
		"look at this instagram.com thing",
	} {
		if got := Classify(text); got != domain.Instagram {
			t.Errorf("Classify(%q) = %s, want instagram", text, got)
		}
	}
}

func TestClassify_YouTube(t *testing.T) {
	for _, text := range []string{
		"https://youtu.be/abc",
		"https://www.youtube.com/shorts/xyz",
		"youtube.com",
	} {
		if got := Classify(text); got != domain.YouTube {
			t.Errorf("Classify(%q) = %s, want youtube", text, got)
		}
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	for _, text := range []string{"hello", "", "https://tiktok.com/@x/video/1", "youtube dot com"} {
		if got := Classify(text); got != domain.Unrecognized {
			t.Errorf("Classify(%q) = %s, want unrecognized", text, got)
		}
	}
}

func TestClassify_CaseSensitive(t *testing.T) {
	if got := Classify("https://INSTAGRAM.COM/reel/ABC/"); got != domain.Unrecognized {
		t.Errorf("uppercase host should not match, got %s", got)
	}
	if got := Classify("https://YouTu.be/abc"); got != domain.Unrecognized {
		t.Errorf("mixed case host should not match, got %s", got)
	}
}

// Lookalike hosts are a known false positive of substring matching.
func TestClassify_LookalikeHostMatches(t *testing.T) {
	if got := Classify("https://myinstagram.com.evil.net/reel/x/"); got != domain.Instagram {
		t.Errorf("expected lookalike to classify as instagram, got %s", got)
	}
}

func TestClassify_InstagramWinsOverYouTube(t *testing.T) {
	if got := Classify("https://instagram.com/p/X/ and https://youtu.be/y"); got != domain.Instagram {
		t.Errorf("expected instagram, got %s", got)
	}
}

func TestClassify_IndependentOfLength(t *testing.T) {
	pad := strings.Repeat("x", 10000)
	if got := Classify(pad + "youtu.be" + pad); got != domain.YouTube {
		t.Errorf("expected youtube, got %s", got)
	}
	if got := Classify(pad); got != domain.Unrecognized {
		t.Errorf("expected unrecognized, got %s", got)
	}
}
