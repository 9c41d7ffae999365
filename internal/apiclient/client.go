package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/permissions"
	appErrors "github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/errors"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/logger"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/metrics"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/response"
)

// DefaultTimeout bounds a single request when the config does not set one.
const DefaultTimeout = 10 * time.Second

const maxErrorBody = 64 << 10

// Config describes how to reach the permissions service.
type Config struct {
	BaseURL    string
	Token      string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the permissions service over HTTP.
type Client struct {
	base      string
	token     string
	userAgent string
	http      *http.Client
	log       *zap.Logger
}

// New constructs a Client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("apiclient: base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: unsupported scheme %q", base.Scheme)
	}
	base.RawQuery = ""
	base.Fragment = ""

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		base:      strings.TrimRight(base.String(), "/"),
		token:     strings.TrimSpace(cfg.Token),
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http:      httpClient,
		log:       logger.WithModule("apiclient"),
	}, nil
}

// ItemPermissionsPath builds the endpoint path for a record's permissions. New records
// (no primary key) omit the trailing segment.
func ItemPermissionsPath(collection string, key permissions.PrimaryKey) string {
	path := "/permissions/me/" + url.PathEscape(collection)
	if value, ok := key.Value(); ok {
		path += "/" + url.PathEscape(value)
	}
	return path
}

// FetchItemPermissions implements permissions.ItemFetcher.
func (c *Client) FetchItemPermissions(ctx context.Context, collection string, key permissions.PrimaryKey) (permissions.ItemPermissions, error) {
	var payload struct {
		Data *permissions.ItemPermissions `json:"data"`
	}
	if err := c.get(ctx, ItemPermissionsPath(collection, key), &payload); err != nil {
		return permissions.ItemPermissions{}, err
	}
	if payload.Data == nil {
		return permissions.ItemPermissions{}, appErrors.ErrInvalidPayload.WithMessage("permissions response is missing data")
	}
	return *payload.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ClientRequests.WithLabelValues("error").Inc()
		return fmt.Errorf("apiclient: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	metrics.ClientRequests.WithLabelValues(statusClass(resp.StatusCode)).Inc()
	c.log.Debug("request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.ErrInvalidPayload.WithInternal(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope response.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		if appErr := envelope.AppError(resp.StatusCode); appErr != nil {
			return appErr
		}
	}
	return appErrors.FromStatus(resp.StatusCode)
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
