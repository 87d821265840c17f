package bot

import (
	"context"

	"reelbot/internal/domain"
)

// Action is the shape of a reply.
type Action int

const (
	ActionText Action = iota
	ActionVideo
)

// Reply is one outbound message.
type Reply struct {
	Action   Action
	Text     string // for ActionText
	VideoURL string // for ActionVideo
	Caption  string // for ActionVideo
}

// Replies holds every user-facing string. The mapping in For is fixed;
// only the wording is configurable.
type Replies struct {
	Greeting     string
	Help         string
	Wait         string // sent before extraction; empty disables
	Unrecognized string
	Success      string // video caption
	NotFound     string
	AuthRequired string
	Private      string
	RateLimited  string
	Unavailable  string
	Failure      string
}

// DefaultReplies returns the stock English wording.
func DefaultReplies() Replies {
	return Replies{
		Greeting:     "Hi! Send me an Instagram reel, story or post link, or a YouTube short, and I'll send the video back.",
		Help:         "Paste a link from instagram.com, youtube.com or youtu.be. Stories need the bot's Instagram account to follow the author.",
		Wait:         "Fetching your video...",
		Unrecognized: "Please send a valid Instagram or YouTube link.",
		Success:      "Here is your video!",
		NotFound:     "Could not find a video in this link.",
		AuthRequired: "A login is required to access this content. Please configure the bot with an Instagram session.",
		Private:      "This is a private account that the bot doesn't follow.",
		RateLimited:  "Instagram is rate limiting the bot right now. Please try again later.",
		Unavailable:  "This video is unavailable, private or blocked.",
		Failure:      "An error occurred while fetching the video.",
	}
}

// UnrecognizedReply is sent for text that matches no platform.
func (r Replies) UnrecognizedReply() Reply {
	return Reply{Action: ActionText, Text: r.Unrecognized}
}

// For maps an extraction result to its reply. Unknown never exposes its
// detail.
func (r Replies) For(res domain.ExtractionResult) Reply {
	switch res.Kind {
	case domain.ResultOK:
		return Reply{Action: ActionVideo, VideoURL: res.VideoURL, Caption: r.Success}
	case domain.ResultNotFound:
		return Reply{Action: ActionText, Text: r.NotFound}
	case domain.ResultAuthRequired:
		return Reply{Action: ActionText, Text: r.AuthRequired}
	case domain.ResultPrivate:
		return Reply{Action: ActionText, Text: r.Private}
	case domain.ResultRateLimited:
		return Reply{Action: ActionText, Text: r.RateLimited}
	case domain.ResultUnsupported:
		return Reply{Action: ActionText, Text: r.Unavailable}
	default:
		return Reply{Action: ActionText, Text: r.Failure}
	}
}

// Deliver sends reply through m.
func Deliver(ctx context.Context, m domain.Messenger, chatID int64, reply Reply) error {
	if reply.Action == ActionVideo {
		return m.SendVideo(ctx, chatID, reply.VideoURL, reply.Caption)
	}
	return m.SendText(ctx, chatID, reply.Text)
}
