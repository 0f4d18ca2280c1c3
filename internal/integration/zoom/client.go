// Package zoom schedules meetings through the Zoom REST API using
// server-to-server OAuth (account credentials grant).
package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/domain/meetings"
)

const (
	scheduledMeeting = 2
	maxBodyBytes     = 64 << 10
	startTimeLayout  = "2006-01-02T15:04:05Z"
)

var ErrMissingCredentials = errors.New("missing Zoom credentials")

type Client struct {
	accountID    string
	clientID     string
	clientSecret string
	oauthURL     string
	apiURL       string
	http         *http.Client
}

func NewClient(cfg config.ZoomConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		accountID:    cfg.AccountID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		oauthURL:     strings.TrimRight(cfg.OAuthURL, "/"),
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		http:         &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken exchanges the account credentials for a short-lived token. A
// fresh token is requested for every meeting.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.accountID == "" || c.clientID == "" || c.clientSecret == "" {
		return "", &apperr.UpstreamError{Service: "Zoom", Err: ErrMissingCredentials}
	}

	query := url.Values{}
	query.Set("grant_type", "account_credentials")
	query.Set("account_id", c.accountID)
	endpoint := c.oauthURL + "/oauth/token?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := c.do(req, "Zoom token")
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", &apperr.UpstreamError{Service: "Zoom token", Status: status, Body: string(body)}
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		return "", &apperr.UpstreamError{Service: "Zoom token", Status: status, Body: "response carried no access_token"}
	}
	return payload.AccessToken, nil
}

type meetingSettings struct {
	JoinBeforeHost bool `json:"join_before_host"`
	WaitingRoom    bool `json:"waiting_room"`
}

type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Agenda    string          `json:"agenda,omitempty"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone"`
	Settings  meetingSettings `json:"settings"`
}

type createMeetingResponse struct {
	ID      json.Number `json:"id"`
	JoinURL string      `json:"join_url"`
}

func (c *Client) CreateMeeting(ctx context.Context, token string, req meetings.RemoteMeetingRequest) (*meetings.RemoteMeeting, error) {
	payload, err := json.Marshal(createMeetingRequest{
		Topic:     req.Topic,
		Agenda:    req.Agenda,
		Type:      scheduledMeeting,
		StartTime: req.StartTime.UTC().Format(startTimeLayout),
		Duration:  req.Duration,
		Timezone:  "UTC",
		Settings: meetingSettings{
			JoinBeforeHost: true,
			WaitingRoom:    false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v2/users/me/meetings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(httpReq, "Zoom API")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &apperr.UpstreamError{Service: "Zoom API", Status: status, Body: string(body)}
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var created createMeetingResponse
	if err := decoder.Decode(&created); err != nil || created.ID.String() == "" {
		return nil, &apperr.UpstreamError{Service: "Zoom API", Status: status, Body: "response carried no meeting id"}
	}
	return &meetings.RemoteMeeting{ID: created.ID.String(), JoinURL: created.JoinURL}, nil
}

// DeleteMeeting cancels a scheduled meeting. A meeting that is already gone
// counts as deleted.
func (c *Client) DeleteMeeting(ctx context.Context, token, remoteID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiURL+"/v2/meetings/"+url.PathEscape(remoteID), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	status, body, err := c.do(req, "Zoom API")
	if err != nil {
		return err
	}
	if status == http.StatusNotFound || (status >= 200 && status <= 299) {
		return nil
	}
	return &apperr.UpstreamError{Service: "Zoom API", Status: status, Body: string(body)}
}

func (c *Client) do(req *http.Request, service string) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &apperr.UpstreamError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, &apperr.UpstreamError{Service: service, Status: resp.StatusCode, Err: err}
	}
	return resp.StatusCode, body, nil
}
