package meetings

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mockline/scheduler/pkg/errors"
	"github.com/mockline/scheduler/pkg/logger"
)

const (
	defaultBaseURL  = "https://api.zoom.us/v2"
	defaultOAuthURL = "https://zoom.us/oauth/token"

	// tokenSkew is subtracted from the advertised token lifetime so we never
	// present a token that expires mid-request.
	tokenSkew = time.Minute
)

func NewZoomProvider(cfg Config, log logger.Logger) *ZoomProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = defaultOAuthURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &ZoomProvider{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With("zoom_provider"),
	}
}

type ZoomProvider struct {
	cfg  Config
	http *http.Client
	log  logger.Logger

	mu         sync.Mutex
	token      string
	tokenUntil time.Time
}

func (z *ZoomProvider) Configured() bool {
	return z.cfg.Configured()
}

type zoomMeeting struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url"`
	HostMail string `json:"host_email"`
}

func (z *ZoomProvider) Create(ctx context.Context, host, topic string, start time.Time, durationMin int) (*Meeting, error) {
	body := map[string]any{
		"topic":      topic,
		"type":       2, // scheduled meeting
		"start_time": start.UTC().Format("2006-01-02T15:04:05Z"),
		"duration":   durationMin,
		"timezone":   "UTC",
		"settings": map[string]any{
			"join_before_host": true,
			"waiting_room":     false,
		},
	}

	var parsed zoomMeeting
	err := z.call(ctx, http.MethodPost, "/users/"+url.PathEscape(host)+"/meetings", body, &parsed)
	if err != nil {
		return nil, providerErr("create meeting", err)
	}

	return &Meeting{
		ID:       fmt.Sprintf("%d", parsed.ID),
		JoinURL:  parsed.JoinURL,
		StartURL: parsed.StartURL,
		Host:     host,
	}, nil
}

func (z *ZoomProvider) Delete(ctx context.Context, meetingID string) error {
	err := z.call(ctx, http.MethodDelete, "/meetings/"+url.PathEscape(meetingID), nil, nil)
	if err != nil {
		return providerErr("delete meeting", err)
	}
	return nil
}

func (z *ZoomProvider) Get(ctx context.Context, meetingID string) (*Meeting, error) {
	var parsed zoomMeeting
	err := z.call(ctx, http.MethodGet, "/meetings/"+url.PathEscape(meetingID), nil, &parsed)
	if err != nil {
		return nil, providerErr("get meeting", err)
	}

	return &Meeting{
		ID:       fmt.Sprintf("%d", parsed.ID),
		JoinURL:  parsed.JoinURL,
		StartURL: parsed.StartURL,
		Host:     parsed.HostMail,
	}, nil
}

func (z *ZoomProvider) call(ctx context.Context, method, path string, body any, out any) error {
	if !z.Configured() {
		return errors.Error("missing credentials")
	}

	token, err := z.accessToken(ctx)
	if err != nil {
		return errors.WrapFail(err, "obtain access token")
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.WrapFail(err, "marshal request body")
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, z.cfg.BaseURL+path, payload)
	if err != nil {
		return errors.WrapFail(err, "build request")
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := z.http.Do(req)
	if err != nil {
		return errors.WrapFail(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("remote api status %d: %s", resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	return errors.WrapFail(err, "decode response")
}

func (z *ZoomProvider) accessToken(ctx context.Context) (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.token != "" && time.Now().Before(z.tokenUntil) {
		return z.token, nil
	}

	form := url.Values{
		"grant_type": {"account_credentials"},
		"account_id": {z.cfg.AccountID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.cfg.OAuthURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", errors.WrapFail(err, "build token request")
	}

	basic := base64.StdEncoding.EncodeToString([]byte(z.cfg.ClientID + ":" + z.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := z.http.Do(req)
	if err != nil {
		return "", errors.WrapFail(err, "request token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("token endpoint status %d", resp.StatusCode)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}

	err = json.NewDecoder(resp.Body).Decode(&parsed)
	if err != nil {
		return "", errors.WrapFail(err, "decode token response")
	}

	z.token = parsed.AccessToken
	z.tokenUntil = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - tokenSkew)

	return z.token, nil
}
