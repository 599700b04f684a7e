package httpx

import (
	"fmt"
	"net/http"
)

// AuthBearerRoundTripper adds a static bearer token to every request. An
// empty token leaves requests untouched.
type AuthBearerRoundTripper struct {
	next  http.RoundTripper
	token string
}

func NewAuthBearerRoundTripper(
	next http.RoundTripper,
	token string,
) AuthBearerRoundTripper {
	return AuthBearerRoundTripper{
		next:  next,
		token: token,
	}
}

func (rt AuthBearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+rt.token)
	}

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	return resp, nil
}
