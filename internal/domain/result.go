package domain

import (
	"fmt"
	"net/url"
)

// ResultKind enumerates the closed set of extraction outcomes.
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultNotFound
	ResultUnsupported
	ResultAuthRequired
	ResultRateLimited
	ResultPrivate
	ResultUnknown
)

var resultNames = map[ResultKind]string{
	ResultOK:           "ok",
	ResultNotFound:     "not_found",
	ResultUnsupported:  "unsupported",
	ResultAuthRequired: "auth_required",
	ResultRateLimited:  "rate_limited",
	ResultPrivate:      "private",
	ResultUnknown:      "unknown",
}

func (k ResultKind) String() string {
	if s, ok := resultNames[k]; ok {
		return s
	}
	return fmt.Sprintf("result(%d)", int(k))
}

// ExtractionResult is what an Extractor produces. VideoURL is set only for
// ResultOK, Detail only for ResultUnknown.
type ExtractionResult struct {
	Kind     ResultKind
	VideoURL string
	Detail   string
}

// OK builds a successful result. A value that is not an absolute http(s)
// URL is not a fetchable video and becomes NotFound.
func OK(videoURL string) ExtractionResult {
	if videoURL == "" {
		return Failure(ResultNotFound)
	}
	u, err := url.Parse(videoURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Failure(ResultNotFound)
	}
	return ExtractionResult{Kind: ResultOK, VideoURL: videoURL}
}

// Failure builds a result for one of the fixed failure kinds.
func Failure(kind ResultKind) ExtractionResult {
	return ExtractionResult{Kind: kind}
}

// Unknown builds a catch-all failure carrying a detail for logs.
func Unknown(detail string) ExtractionResult {
	return ExtractionResult{Kind: ResultUnknown, Detail: detail}
}

func (r ExtractionResult) IsOK() bool { return r.Kind == ResultOK }
