// Package room talks to the real-time room service: administrative RPCs and
// the data side channel participants use to inject text.
package room

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tiro-ai/voice-tutor/pkg/core"
)

// AdminClient issues admin RPCs against the room service, authenticated with
// short-lived HS256 access tokens minted from the API key pair.
type AdminClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	now        func() time.Time
}

func NewAdminClient(baseURL, apiKey, apiSecret string, httpClient *http.Client) *AdminClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AdminClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: httpClient,
		now:        time.Now,
	}
}

type videoGrant struct {
	RoomAdmin bool   `json:"roomAdmin"`
	Room      string `json:"room"`
}

type adminClaims struct {
	jwt.RegisteredClaims
	Video videoGrant `json:"video"`
}

func (c *AdminClient) accessToken(room string) (string, error) {
	now := c.now()
	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.apiKey,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
		Video: videoGrant{RoomAdmin: true, Room: room},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.apiSecret))
}

// DeleteRoom tears down the named room, disconnecting every participant.
// Callers treat failure as best-effort: log it and move on.
func (c *AdminClient) DeleteRoom(ctx context.Context, room string) error {
	token, err := c.accessToken(room)
	if err != nil {
		return core.NewTransportError("mint room access token", err)
	}

	body, err := json.Marshal(map[string]string{"room": room})
	if err != nil {
		return core.NewTransportError("marshal delete request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/twirp/livekit.RoomService/DeleteRoom", bytes.NewReader(body))
	if err != nil {
		return core.NewTransportError("create delete request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.NewTransportError("delete room", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return core.NewTransportError(
			fmt.Sprintf("room service error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(b))), nil)
	}
	return nil
}
