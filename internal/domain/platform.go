package domain

// PlatformKind is the platform a message was classified as.
type PlatformKind int

const (
	Unrecognized PlatformKind = iota
	Instagram
	YouTube
)

func (p PlatformKind) String() string {
	switch p {
	case Instagram:
		return "instagram"
	case YouTube:
		return "youtube"
	default:
		return "unrecognized"
	}
}

// RefKind is the shape of an Instagram link.
type RefKind int

const (
	RefGeneric RefKind = iota
	RefReel
	RefStory
)

func (k RefKind) String() string {
	switch k {
	case RefReel:
		return "reel"
	case RefStory:
		return "story"
	default:
		return "generic"
	}
}

// ContentRef locates a single piece of media on a platform. For YouTube
// only RawURL is set.
type ContentRef struct {
	Kind      RefKind
	Shortcode string
	Username  string
	MediaID   int64
	RawURL    string
}
