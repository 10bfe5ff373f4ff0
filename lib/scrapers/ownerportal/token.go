package ownerportal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/codes"
)

type apiTokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

// FetchAPIToken exchanges the established session cookies for the
// bearer token the reservations endpoint requires, and installs it on
// the client for every subsequent request. The reported expiry is
// informational only; a run finishes well within any token lifetime.
func (c *Client) FetchAPIToken(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchAPIToken")
	defer span.End()

	res, err := c.get(ctx, c.opts.TokenPath, nil, map[string]string{
		"accept": "application/json, text/javascript, */*; q=0.01",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch api token")
		return "", err
	}
	if res.Status != http.StatusOK {
		span.SetStatus(codes.Error, "token endpoint returned non-200")
		return "", &AuthError{Reason: fmt.Sprintf("token endpoint returned status %d", res.Status)}
	}
	if !res.IsJSON() {
		span.SetStatus(codes.Error, "token endpoint returned non-json body")
		return "", &AuthError{Reason: "token endpoint did not return json"}
	}

	var body apiTokenResponse
	if err := json.Unmarshal(res.JSON, &body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode token response")
		return "", &AuthError{Reason: "malformed token response"}
	}
	if !body.Success || body.Token == "" {
		span.SetStatus(codes.Error, "token endpoint reported failure")
		return "", &AuthError{Reason: "token endpoint reported failure or empty token"}
	}

	if body.Expires != "" {
		slog.DebugContext(ctx, "api token acquired", "expires", body.Expires)
	}

	c.bearer = body.Token
	return body.Token, nil
}
