// Package youtube resolves YouTube links to direct media URLs with yt-dlp.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"reelbot/internal/domain"
)

var tracer = otel.Tracer("reelbot/youtube")

// Extractor is the YouTube platform adapter.
type Extractor struct {
	fetcher Fetcher
	logger  *slog.Logger
}

var _ domain.Extractor = (*Extractor)(nil)

func NewExtractor(fetcher Fetcher, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{fetcher: fetcher, logger: logger}
}

// Extract implements domain.Extractor.
func (e *Extractor) Extract(ctx context.Context, url string) (res domain.ExtractionResult) {
	ctx, span := tracer.Start(ctx, "youtube.extract")
	defer func() {
		if r := recover(); r != nil {
			res = domain.Unknown(fmt.Sprintf("youtube adapter panic: %v", r))
		}
		span.SetAttributes(attribute.String("result", res.Kind.String()))
		if res.Kind == domain.ResultUnknown {
			span.SetStatus(codes.Error, res.Detail)
		}
		span.End()
	}()

	md, err := e.fetcher.FetchMetadata(ctx, url)
	if err != nil {
		var dlErr *DownloadError
		if errors.As(err, &dlErr) {
			e.logger.Info("youtube video unavailable", "url", url, "reason", dlErr.Message)
			return domain.Failure(domain.ResultUnsupported)
		}
		return domain.Unknown(err.Error())
	}
	if md == nil {
		return domain.Failure(domain.ResultNotFound)
	}
	return domain.OK(md.URL)
}
