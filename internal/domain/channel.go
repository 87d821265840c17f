package domain

import "context"

// Messenger is the outbound half of a messaging platform.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendVideo(ctx context.Context, chatID int64, videoURL, caption string) error
}

// Extractor resolves a share URL into a direct video URL. Implementations
// must translate every failure into an ExtractionResult and never panic
// past their boundary.
type Extractor interface {
	Extract(ctx context.Context, url string) ExtractionResult
}
