package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/google/uuid"
)

// authTransport is the request/response interceptor pair.
//
// Outbound: attaches the credential (context override first, then the stored
// one) as a bearer token, tags the request with an id and waits for the
// throttle. Inbound: a 401 on a credentialed, non-exempt request runs the
// teardown synchronously, so by the time the caller sees the error the
// session has already been reset.
type authTransport struct {
	next   http.RoundTripper
	client *HTTPClient
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, ok := credentialFromContext(ctx)
	if !ok {
		stored, err := t.client.store.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCredentialStore, err)
		}
		token = stored
	}

	req = req.Clone(ctx)
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+token)
	}
	if req.Header.Get(common.RequestIDHeader) == "" {
		req.Header.Set(common.RequestIDHeader, uuid.NewString())
	}

	if t.client.limiter != nil {
		if err := t.client.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	t.client.logger.Debug(ctx, "api call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(common.RequestIDHeader),
		"authenticated", token != "",
	)

	if resp.StatusCode == http.StatusUnauthorized && token != "" && !teardownExempt(ctx) {
		t.client.teardown(ctx, token)
	}

	return resp, nil
}

// teardown forgets token. The registered handler (the session manager) owns
// the slot and the in-memory state; without one the slot is cleared here.
// It runs detached from the request's cancellation so an aborted caller
// cannot leave a rejected credential behind.
func (c *HTTPClient) teardown(ctx context.Context, token string) {
	ctx = context.WithoutCancel(ctx)

	c.logger.Warn(ctx, "credential rejected by server, tearing down session")

	if h := c.unauthorizedHandler(); h != nil {
		h.HandleUnauthorized(ctx, token)
		return
	}

	if _, err := c.store.ClearIf(ctx, token); err != nil {
		c.logger.Error(ctx, "failed to clear rejected credential", "error", err)
	}
}
