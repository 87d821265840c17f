package instagram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc, s *Session) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, PublicURL: srv.URL, Session: s, HTTPClient: srv.Client(), Logger: testLogger()})
}

const reelPage = `<!DOCTYPE html><html><head>
<meta property="og:title" content="owner on Instagram: &quot;sunset&quot;">
<meta property="og:type" content="video.other">
<meta property="og:video" content="https://cdn.example/r.mp4?a=1&amp;b=2">
</head><body></body></html>`

func TestClient_PostByShortcode(t *testing.T) {
	var gotPath, gotCookie, gotAppID, gotCSRF string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAppID = r.Header.Get("X-IG-App-ID")
		gotCSRF = r.Header.Get("X-CSRFToken")
		if ck, err := r.Cookie("sessionid"); err == nil {
			gotCookie = ck.Value
		}
		w.Write([]byte(`{"items":[{"media_type":2,"user":{"username":"owner"},"video_versions":[{"url":"https://cdn.example/v.mp4"}]}],"status":"ok"}`))
	}, &Session{SessionID: "sid", CSRFToken: "tok"})

	post, err := c.PostByShortcode(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/v1/media/17522103/info/" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotCookie != "sid" || gotCSRF != "tok" || gotAppID != webAppID {
		t.Errorf("session headers not sent: cookie=%q csrf=%q app=%q", gotCookie, gotCSRF, gotAppID)
	}
	if !post.IsVideo || post.VideoURL != "https://cdn.example/v.mp4" || post.OwnerUsername != "owner" {
		t.Errorf("unexpected post: %+v", post)
	}
}

func TestClient_PostWithoutVideo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"media_type":1,"image_versions2":{}}],"status":"ok"}`))
	}, nil)

	post, err := c.PostByShortcode(context.Background(), "XYZ789")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.IsVideo || post.VideoURL != "" {
		t.Errorf("photo post should have no video: %+v", post)
	}
}

func TestClient_AnonymousSendsNoCookies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if len(r.Cookies()) != 0 {
			t.Errorf("expected no cookies, got %v", r.Cookies())
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"login_required","status":"fail"}`))
	}, nil)

	_, err := c.PostByShortcode(context.Background(), "ABC123")
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
}

func TestClient_AnonymousPublicPage(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if len(r.Cookies()) != 0 {
			t.Errorf("expected no cookies, got %v", r.Cookies())
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(reelPage))
	}, nil)

	post, err := c.PostByShortcode(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/p/ABC123/" {
		t.Errorf("expected only the public page, got %v", paths)
	}
	want := &Post{Shortcode: "ABC123", MediaID: "17522103", OwnerUsername: "owner", IsVideo: true, VideoURL: "https://cdn.example/r.mp4?a=1&b=2"}
	if *post != *want {
		t.Errorf("got %+v, want %+v", post, want)
	}
}

func TestClient_AnonymousReelResolves(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(reelPage))
	}, nil)

	res := NewExtractor(c, testLogger()).Extract(context.Background(), "https://www.instagram.com/reel/ABC123/")
	if !res.IsOK() || res.VideoURL != "https://cdn.example/r.mp4?a=1&b=2" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestClient_AnonymousPageWithoutVideoAsksAPI(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/p/ABC123/" {
			w.Write([]byte(`<html><head><meta property="og:image" content="https://cdn.example/i.jpg"></head></html>`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"login_required","status":"fail"}`))
	}, nil)

	_, err := c.PostByShortcode(context.Background(), "ABC123")
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
	if len(paths) != 2 || paths[1] != "/api/v1/media/17522103/info/" {
		t.Errorf("expected page then api, got %v", paths)
	}
}

func TestClient_AnonymousPageMissing(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}, nil)

	_, err := c.PostByShortcode(context.Background(), "ABC123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the api to be skipped, got %d requests", calls)
	}
}

func TestClient_SessionSkipsPublicPage(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"items":[{"video_versions":[{"url":"https://cdn.example/v.mp4"}]}],"status":"ok"}`))
	}, &Session{SessionID: "sid"})

	if _, err := c.PostByShortcode(context.Background(), "ABC123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/api/v1/media/17522103/info/" {
		t.Errorf("expected only the api, got %v", paths)
	}
}

func TestOwnerFromTitle(t *testing.T) {
	for title, want := range map[string]string{
		"owner on Instagram: \"hi\"": "owner",
		"Instagram":                  "",
		"":                           "",
	} {
		if got := ownerFromTitle(title); got != want {
			t.Errorf("ownerFromTitle(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"login message", http.StatusBadRequest, `{"message":"login_required","status":"fail"}`, ErrLoginRequired},
		{"require login flag", http.StatusForbidden, `{"require_login":true,"status":"fail"}`, ErrLoginRequired},
		{"429", http.StatusTooManyRequests, `{"status":"fail"}`, ErrRateLimited},
		{"wait message", http.StatusBadRequest, `{"message":"Please wait a few minutes before you try again.","status":"fail"}`, ErrRateLimited},
		{"private", http.StatusBadRequest, `{"message":"Not authorized to view user","status":"fail"}`, ErrPrivateProfile},
		{"404", http.StatusNotFound, `{"status":"fail"}`, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}, nil)
			_, err := c.PostByShortcode(context.Background(), "ABC123")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClient_LoginRedirect(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://www.instagram.com/accounts/login/?next=/", http.StatusFound)
	}, nil)

	_, err := c.PostByShortcode(context.Background(), "ABC123")
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
}

func TestClient_UnexpectedStatusIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}, nil)

	_, err := c.PostByShortcode(context.Background(), "ABC123")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", apiErr.Status)
	}
}

func TestClient_NonJSONSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>login</html>"))
	}, nil)

	_, err := c.PostByShortcode(context.Background(), "ABC123")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
}

func TestClient_MissingItemsIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[],"status":"ok"}`))
	}, nil)

	_, err := c.PostByShortcode(context.Background(), "ABC123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Profile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/web_profile_info/" || r.URL.Query().Get("username") != "someuser" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Write([]byte(`{"data":{"user":{"id":"998877","username":"someuser","is_private":true,"followed_by_viewer":true}},"status":"ok"}`))
	}, &Session{SessionID: "sid"})

	p, err := c.Profile(context.Background(), "someuser")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 998877 || !p.IsPrivate || !p.FollowedByViewer {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestClient_ProfileMissingUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":null},"status":"ok"}`))
	}, nil)

	_, err := c.Profile(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Stories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["reel_ids"]
		if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
			t.Errorf("unexpected reel_ids %v", ids)
		}
		w.Write([]byte(`{"reels_media":[
			{"user":{"pk":1},"items":[
				{"pk":"3300000000000000001","video_versions":[{"url":"https://cdn.example/s1.mp4"}]},
				{"pk":3300000000000000002}
			]},
			{"user":{"pk":"2"},"items":[]}
		],"status":"ok"}`))
	}, &Session{SessionID: "sid"})

	stories, err := c.Stories(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(stories))
	}
	first := stories[0]
	if first.OwnerID != 1 || len(first.Items) != 2 {
		t.Fatalf("unexpected first story: %+v", first)
	}
	if first.Items[0].MediaID != 3300000000000000001 || first.Items[0].VideoURL != "https://cdn.example/s1.mp4" {
		t.Errorf("unexpected first item: %+v", first.Items[0])
	}
	if first.Items[1].MediaID != 3300000000000000002 || first.Items[1].VideoURL != "" {
		t.Errorf("unexpected second item: %+v", first.Items[1])
	}
	if stories[1].OwnerID != 2 {
		t.Errorf("expected owner 2, got %d", stories[1].OwnerID)
	}
}

func TestClient_StoriesNoIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, nil)
	stories, err := c.Stories(context.Background(), nil)
	if err != nil || stories != nil {
		t.Fatalf("expected nil, nil; got %v, %v", stories, err)
	}
}
