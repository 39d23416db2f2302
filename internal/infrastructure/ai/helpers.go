package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/kaelos/kael-go/internal/domain"
)

// requireCredential is the fail-fast gate shared by credentialed adapters.
// It runs before any request is built so a missing key never costs a network
// round trip.
func requireCredential(req domain.CompletionRequest) error {
	if !req.Provider.RequiresCredential() {
		return nil
	}
	if req.Credential == "" {
		return domain.NewCompletionError(domain.FailureMissingCredential, req.Provider,
			"no API key configured", nil)
	}
	return nil
}

// transportErr classifies a failed HTTP round trip. Deadline and timeout
// failures get their own kind so the fallback chain can report them
// distinctly. The wrapped error is kept for logs but the message stays free
// of URLs, which may carry query parameters.
func transportErr(p domain.Provider, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewCompletionError(domain.FailureTimeout, p, "request timed out", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return domain.NewCompletionError(domain.FailureTimeout, p, "request timed out", err)
	default:
		return domain.NewCompletionError(domain.FailureProviderUnavailable, p, "provider unreachable", err)
	}
}

// statusErr classifies a non-success HTTP status.
func statusErr(p domain.Provider, resp *http.Response) error {
	return domain.NewCompletionError(domain.FailureProviderUnavailable, p,
		fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
}

// malformedErr tags a response that parsed but carried no usable content.
func malformedErr(p domain.Provider, detail string, err error) error {
	return domain.NewCompletionError(domain.FailureMalformedResponse, p, detail, err)
}
