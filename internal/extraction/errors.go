package extraction

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrUpstream reports a provider that answered with an error or an
	// unusable body.
	ErrUpstream = errors.New("extraction provider failed")
	// ErrUnavailable reports a provider with no API key configured.
	ErrUnavailable = errors.New("extraction provider is not configured")
	ErrInvalidURL  = errors.New("invalid website url")
)

// withoutURL drops the request URL from transport errors. SerpAPI takes its
// key as a query parameter, so the URL must never reach logs or responses.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
