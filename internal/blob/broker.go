package blob

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

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// UploadTarget is a one-time destination for a single file upload.
type UploadTarget struct {
	UploadURL          string `json:"uploadUrl"`
	AuthorizationToken string `json:"authorizationToken"`
}

// APIError is an error body returned by the B2 API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("b2: %d %s: %s", e.Status, e.Code, e.Message)
}

type Credentials struct {
	KeyID    string
	AppKey   string
	BucketID string
}

type authorization struct {
	AccountID          string `json:"accountId"`
	AuthorizationToken string `json:"authorizationToken"`
	APIURL             string `json:"apiUrl"`
	DownloadURL        string `json:"downloadUrl"`
}

// Broker issues upload targets for one bucket. Account authorization is
// cached and refreshed when B2 reports it expired.
type Broker struct {
	apiURL     string
	creds      Credentials
	httpClient *http.Client
	logger     zerolog.Logger
	maxElapsed time.Duration

	mu   sync.Mutex
	auth *authorization
}

func NewBroker(apiURL string, creds Credentials, httpClient *http.Client, logger zerolog.Logger) *Broker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Broker{
		apiURL:     strings.TrimRight(apiURL, "/"),
		creds:      creds,
		httpClient: httpClient,
		logger:     logger,
		maxElapsed: 20 * time.Second,
	}
}

// RequestUploadTarget authorizes if needed and asks B2 for an upload URL.
func (b *Broker) RequestUploadTarget(ctx context.Context) (*UploadTarget, error) {
	auth, err := b.authorize(ctx, false)
	if err != nil {
		return nil, err
	}

	target, err := b.getUploadURL(ctx, auth)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusUnauthorized {
		b.logger.Debug().Str("code", apiErr.Code).Msg("b2 authorization rejected, re-authorizing")
		if auth, err = b.authorize(ctx, true); err != nil {
			return nil, err
		}
		target, err = b.getUploadURL(ctx, auth)
	}
	if err != nil {
		return nil, err
	}

	return target, nil
}

func (b *Broker) authorize(ctx context.Context, force bool) (*authorization, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.auth != nil && !force {
		return b.auth, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = b.maxElapsed

	var auth authorization
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiURL+"/b2api/v2/b2_authorize_account", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.SetBasicAuth(b.creds.KeyID, b.creds.AppKey)

		err = b.do(req, &auth)
		if apiErr, ok := err.(*APIError); ok && apiErr.Status < 500 {
			// bad credentials will not fix themselves
			return backoff.Permanent(apiErr)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		b.logger.Warn().Err(err).Dur("retry_in", wait).Msg("b2 authorization failed")
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("authorize b2 account: %w", err)
	}

	b.logger.Info().Str("api_url", auth.APIURL).Msg("b2 account authorized")
	b.auth = &auth
	return b.auth, nil
}

func (b *Broker) getUploadURL(ctx context.Context, auth *authorization) (*UploadTarget, error) {
	body, err := json.Marshal(map[string]string{"bucketId": b.creds.BucketID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(auth.APIURL, "/")+"/b2api/v2/b2_get_upload_url", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", auth.AuthorizationToken)
	req.Header.Set("Content-Type", "application/json")

	var target UploadTarget
	if err := b.do(req, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

func (b *Broker) do(req *http.Request, out interface{}) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = strings.TrimSpace(string(data))
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
