package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/etherealgames/nexuscore/engine/codec"
)

// tokenSkew is subtracted from the token expiry so a token about to
// lapse mid-request is refreshed up front.
const tokenSkew = 30 * time.Second

// Client is the HTTP Store implementation. It authenticates lazily via
// the challenge/response flow and caches the bearer token until close
// to expiry. Safe for concurrent use.
type Client struct {
	base   string
	http   *http.Client
	signer *Signer

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient creates a client for the service at baseURL, signing auth
// challenges with signer.
func NewClient(baseURL string, timeout time.Duration, signer *Signer) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		signer: signer,
	}
}

type authRequest struct {
	Wallet string `json:"wallet"`
}

type authChallenge struct {
	Message string `json:"message"`
}

type authConfirm struct {
	Wallet    string `json:"wallet"`
	Signature string `json:"signature"`
}

type authGrant struct {
	AccessToken string `json:"accessToken"`
}

// bearer returns a cached token or runs the full auth flow.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExp.Add(-tokenSkew)) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()
	return c.authenticate(ctx)
}

// authenticate runs request -> sign -> confirm and caches the token.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	wallet := c.signer.Address()

	var challenge authChallenge
	if err := c.postJSON(ctx, "/v1/auth/request", authRequest{Wallet: wallet}, &challenge); err != nil {
		return "", fmt.Errorf("requesting auth challenge: %w", err)
	}

	var grant authGrant
	confirm := authConfirm{
		Wallet:    wallet,
		Signature: c.signer.Sign([]byte(challenge.Message)),
	}
	if err := c.postJSON(ctx, "/v1/auth/confirm", confirm, &grant); err != nil {
		return "", fmt.Errorf("confirming auth challenge: %w", err)
	}
	if grant.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuthRequired)
	}

	c.mu.Lock()
	c.token = grant.AccessToken
	c.tokenExp = tokenExpiry(grant.AccessToken)
	c.mu.Unlock()
	return grant.AccessToken, nil
}

// tokenExpiry reads the exp claim without verifying the signature (the
// server verifies; we only schedule the refresh). Unparseable tokens
// get a short fixed lifetime.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Minute)
}

// dropToken forgets the cached token so the next call re-authenticates.
func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// profileBody is the wire shape of a stored profile.
type profileBody struct {
	Name       string      `json:"name,omitempty"`
	CustomData [][2]string `json:"customData"`
}

// Load fetches the profile for wallet. A 404 means no profile exists
// yet and returns (nil, nil).
func (c *Client) Load(ctx context.Context, wallet string) (*Snapshot, error) {
	tok, err := c.bearer(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, "/v1/profiles/"+wallet, nil, tok)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusUnauthorized:
		c.dropToken()
		return nil, fmt.Errorf("%w: status %d", ErrAuthRequired, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d", ErrRemoteRejected, resp.StatusCode)
	}

	var body profileBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	bag := make(codec.Bag, len(body.CustomData))
	for _, kv := range body.CustomData {
		bag[kv[0]] = kv[1]
	}
	return &Snapshot{Name: body.Name, Data: bag}, nil
}

// Save writes the flattened payload for wallet. On a 401 it drops the
// cached token and retries once with fresh credentials; a second
// rejection surfaces as ErrAuthRequired.
func (c *Client) Save(ctx context.Context, wallet string, pairs []codec.KV) error {
	custom := make([][2]string, len(pairs))
	for i, kv := range pairs {
		custom[i] = [2]string{kv.Key, kv.Value}
	}
	payload, err := json.Marshal(profileBody{CustomData: custom})
	if err != nil {
		return err
	}

	for attempt := 0; attempt < 2; attempt++ {
		tok, err := c.bearer(ctx)
		if err != nil {
			return err
		}
		resp, err := c.do(ctx, http.MethodPut, "/v1/profiles/"+wallet, payload, tok)
		if err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode <= 299:
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			c.dropToken()
			continue
		default:
			return fmt.Errorf("%w: status %d", ErrRemoteRejected, resp.StatusCode)
		}
	}
	return fmt.Errorf("%w: unauthorized after re-auth", ErrAuthRequired)
}

// Bootstrap ensures a profile exists for the signer's wallet, creating
// one with a derived display name on first contact. It returns the
// existing or freshly created snapshot.
func (c *Client) Bootstrap(ctx context.Context) (*Snapshot, error) {
	wallet := c.signer.Address()
	snap, err := c.Load(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		return snap, nil
	}

	name := "Adventurer"
	if len(wallet) >= 4 {
		name = "Adventurer-" + wallet[:4]
	}
	tok, err := c.bearer(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(profileBody{Name: name})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/v1/profiles", payload, tok)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRemoteRejected, resp.StatusCode)
	}
	return &Snapshot{Name: name, Data: codec.Bag{}}, nil
}

// postJSON POSTs body to an unauthenticated endpoint and decodes the
// JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, path, payload, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrRemoteRejected, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// do issues one HTTP request, attaching the bearer token when given.
func (c *Client) do(ctx context.Context, method, path string, body []byte, token string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}
