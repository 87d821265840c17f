// Package instagram resolves Instagram reels, posts and stories to direct
// video URLs through a logged-in web session, or the public post page when
// there is none.
package instagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"reelbot/internal/domain"
	"reelbot/internal/link"
)

var tracer = otel.Tracer("reelbot/instagram")

var errStoryItemMissing = fmt.Errorf("story item: %w", ErrNotFound)

// Extractor is the Instagram platform adapter.
type Extractor struct {
	backend Backend
	logger  *slog.Logger
}

var _ domain.Extractor = (*Extractor)(nil)

func NewExtractor(backend Backend, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{backend: backend, logger: logger}
}

// Extract implements domain.Extractor.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (res domain.ExtractionResult) {
	ctx, span := tracer.Start(ctx, "instagram.extract")
	defer func() {
		if r := recover(); r != nil {
			res = domain.Unknown(fmt.Sprintf("instagram adapter panic: %v", r))
		}
		span.SetAttributes(attribute.String("result", res.Kind.String()))
		if res.Kind == domain.ResultUnknown {
			span.SetStatus(codes.Error, res.Detail)
		}
		span.End()
	}()

	ref, err := link.ParseInstagram(rawURL)
	if err != nil {
		return domain.Unknown(err.Error())
	}
	span.SetAttributes(attribute.String("instagram.kind", ref.Kind.String()))

	var videoURL string
	switch ref.Kind {
	case domain.RefStory:
		videoURL, err = e.storyVideo(ctx, ref)
	default:
		videoURL, err = e.postVideo(ctx, ref.Shortcode)
	}
	if err != nil {
		return resultFor(err)
	}
	return domain.OK(videoURL)
}

func (e *Extractor) postVideo(ctx context.Context, shortcode string) (string, error) {
	post, err := e.backend.PostByShortcode(ctx, shortcode)
	if err != nil {
		return "", err
	}
	e.logger.Debug("instagram post resolved", "shortcode", shortcode, "is_video", post.IsVideo)
	return post.VideoURL, nil
}

func (e *Extractor) storyVideo(ctx context.Context, ref domain.ContentRef) (string, error) {
	profile, err := e.backend.Profile(ctx, ref.Username)
	if err != nil {
		return "", err
	}
	if profile.IsPrivate && !profile.FollowedByViewer {
		return "", ErrPrivateProfile
	}
	stories, err := e.backend.Stories(ctx, []int64{profile.ID})
	if err != nil {
		return "", err
	}
	for _, story := range stories {
		for _, item := range story.Items {
			if item.MediaID == ref.MediaID {
				return item.VideoURL, nil
			}
		}
	}
	return "", errStoryItemMissing
}

// resultFor translates a backend error into exactly one result variant.
func resultFor(err error) domain.ExtractionResult {
	switch {
	case errors.Is(err, ErrLoginRequired):
		return domain.Failure(domain.ResultAuthRequired)
	case errors.Is(err, ErrPrivateProfile):
		return domain.Failure(domain.ResultPrivate)
	case errors.Is(err, ErrRateLimited):
		return domain.Failure(domain.ResultRateLimited)
	case errors.Is(err, ErrNotFound):
		return domain.Failure(domain.ResultNotFound)
	default:
		return domain.Unknown(err.Error())
	}
}
