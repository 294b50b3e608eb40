// Package fleet is the HTTP client for the remote fleet-maintenance API. The
// remote offers no bulk or transactional operations; every method here is a
// single blocking call and no method retries.
package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-fleetbridge/core"
)

const (
	defaultRequestTimeout        = 30 * time.Second
	defaultMaxPages              = 50
	defaultPageSize              = 100
	maxResponseBodyBytes   int64 = 10 << 20 // 10 MiB
)

type Config struct {
	Token          string
	AccountToken   string
	BaseURL        string
	AccountBaseURL string
	UploadURL      string
	RequestTimeout time.Duration
	MaxPages       int
	PageSize       int
	HTTPClient     core.HTTPDoer
	Logger         core.Logger
}

// FromCoreConfig maps the resolved service configuration onto a client config.
func FromCoreConfig(cfg core.Config) Config {
	return Config{
		Token:          cfg.API.Token,
		AccountToken:   cfg.API.AccountToken,
		BaseURL:        cfg.API.BaseURL,
		AccountBaseURL: cfg.API.AccountBaseURL,
		UploadURL:      cfg.API.UploadURL,
		RequestTimeout: cfg.API.RequestTimeout,
		MaxPages:       cfg.API.MaxPages,
		PageSize:       cfg.API.PageSize,
	}
}

type Client struct {
	token          string
	accountToken   string
	baseURL        string
	accountBaseURL string
	uploadURL      string
	requestTimeout time.Duration
	maxPages       int
	pageSize       int
	httpClient     core.HTTPDoer
	logger         core.Logger
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("fleet: base url is required")
	}
	uploadURL := strings.TrimSuffix(strings.TrimSpace(cfg.UploadURL), "/")
	if uploadURL == "" {
		return nil, fmt.Errorf("fleet: upload url is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	logger := cfg.Logger
	if logger == nil {
		_, logger = glog.Resolve("fleet", nil, nil)
	}

	return &Client{
		token:          strings.TrimSpace(cfg.Token),
		accountToken:   strings.TrimSpace(cfg.AccountToken),
		baseURL:        baseURL,
		accountBaseURL: strings.TrimSuffix(strings.TrimSpace(cfg.AccountBaseURL), "/"),
		uploadURL:      uploadURL,
		requestTimeout: requestTimeout,
		maxPages:       maxPages,
		pageSize:       pageSize,
		httpClient:     httpClient,
		logger:         logger,
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// do issues one request and returns the response body. A transport failure or
// a non-2xx status aborts with an external error carrying status and body; no
// partial result is returned.
func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, body []byte, contentType string) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("fleet: client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fleet: parse url: %w", err)
	}
	if len(query) > 0 {
		merged := parsed.Query()
		for key, values := range query {
			for _, value := range values {
				merged.Set(key, value)
			}
		}
		parsed.RawQuery = merged.Encode()
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, parsed.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("fleet: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	if c.accountToken != "" {
		req.Header.Set("Account-Token", c.accountToken)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.ExternalError("fleet: "+method+" "+parsed.Path+" failed: "+err.Error(), 0, "")
	}
	defer res.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBodyBytes+1))
	if readErr != nil {
		return nil, fmt.Errorf("fleet: read response: %w", readErr)
	}
	if int64(len(payload)) > maxResponseBodyBytes {
		return nil, fmt.Errorf("fleet: response exceeds %d bytes", maxResponseBodyBytes)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, core.ExternalError(
			fmt.Sprintf("fleet: %s %s returned status %d", method, parsed.Path, res.StatusCode),
			res.StatusCode,
			string(payload),
		)
	}
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	payload, err := c.do(ctx, http.MethodGet, c.endpoint(path), query, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeObject(path, payload)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any) (map[string]any, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("fleet: encode request body: %w", err)
	}
	payload, err := c.do(ctx, method, c.endpoint(path), nil, encoded, "application/json")
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return map[string]any{}, nil
	}
	return decodeObject(path, payload)
}

func decodeObject(path string, payload []byte) (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, core.MalformedResponseError(
			"fleet: decode response for "+path,
			map[string]any{"decode_error": err.Error()},
		)
	}
	return decoded, nil
}

// records extracts a list payload that the remote returns either as a bare
// array or wrapped in a "records" envelope.
func records(payload []byte) ([]map[string]any, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] == '[' {
		var list []map[string]any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, false
		}
		return list, true
	}
	var envelope struct {
		Records []map[string]any `json:"records"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, false
	}
	if envelope.Records == nil {
		return nil, false
	}
	return envelope.Records, true
}

func readString(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		if value == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

func readInt64(value any) (int64, bool) {
	switch typed := value.(type) {
	case float64:
		return int64(typed), true
	case int:
		return int64(typed), true
	case int64:
		return typed, true
	case json.Number:
		parsed, err := typed.Int64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func readBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		return err == nil && parsed
	default:
		return false
	}
}

var _ core.FleetAPI = (*Client)(nil)
