package vaultsdk

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// httpClient is the concrete implementation of the Client interface.
type httpClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     hclog.Logger
}

// Compile-time check that httpClient implements Client.
var _ Client = (*httpClient)(nil)

// NewClient creates a new vault API client.
//
// baseURL is the API root (e.g., "https://api.fordefi.com"); empty selects
// DefaultBaseURL. token is the API user's bearer token.
func NewClient(baseURL, token string, opts ...Option) (Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("vaultsdk: invalid base URL: %w", err)
	}
	if token == "" {
		return nil, errors.New("vaultsdk: API token is required")
	}

	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: hclog.NewNullLogger(),
	}

	cfg := &options{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("vaultsdk: option error: %w", err)
		}
	}

	if cfg.logger != nil {
		c.logger = cfg.logger
	}

	if cfg.httpClient != nil {
		c.httpClient = cfg.httpClient
	} else {
		if cfg.timeout > 0 {
			c.httpClient.Timeout = cfg.timeout
		}
		if cfg.tlsConfig != nil {
			c.httpClient.Transport = &http.Transport{
				TLSClientConfig: cfg.tlsConfig,
			}
		}
	}

	return c, nil
}

// CreateTransaction transmits a signed request body. The body is sent as-is.
func (c *httpClient) CreateTransaction(ctx context.Context, req *SignedRequest) (*Transaction, error) {
	if err := validateSignedRequest(req); err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set(HeaderTimestamp, req.Timestamp)
	header.Set(HeaderSignature, base64.StdEncoding.EncodeToString(req.Signature))
	if req.IdempotenceID != "" {
		header.Set(HeaderIdempotenceID, req.IdempotenceID)
	}

	resp, err := c.do(ctx, http.MethodPost, req.Path, header, req.Body)
	if err != nil {
		return nil, err
	}
	return c.parseTransaction(resp)
}

// GetTransaction fetches a transaction by ID.
func (c *httpClient) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	if id == "" {
		return nil, errors.New("vaultsdk: transaction id is required")
	}
	resp, err := c.do(ctx, http.MethodGet, TransactionsPath+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return c.parseTransaction(resp)
}

func validateSignedRequest(req *SignedRequest) error {
	switch {
	case req == nil:
		return errors.New("vaultsdk: signed request is required")
	case !strings.HasPrefix(req.Path, "/"):
		return fmt.Errorf("vaultsdk: request path %q must start with /", req.Path)
	case req.Timestamp == "":
		return errors.New("vaultsdk: timestamp is required")
	case len(req.Signature) == 0:
		return errors.New("vaultsdk: signature is required")
	case len(req.Body) == 0:
		return errors.New("vaultsdk: body is required")
	}
	return nil
}

// do executes a single HTTP request with the bearer token header. Transport
// failures are returned as *NetworkError.
func (c *httpClient) do(ctx context.Context, method, path string, header http.Header, body []byte) (*http.Response, error) {
	target := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("vaultsdk: failed to build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	c.logger.Debug("sending request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	c.logger.Debug("received response", "method", method, "path", path, "status", resp.StatusCode)
	return resp, nil
}

// parseTransaction reads the response body and decodes a transaction. Any
// non-2xx status, or a 2xx body without an id, yields *Error.
func (c *httpClient) parseTransaction(resp *http.Response) (*Transaction, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{
			Method: resp.Request.Method,
			URL:    resp.Request.URL.String(),
			Err:    fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tx Transaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Message:    "malformed response",
		}
	}
	if tx.ID == "" {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Message:    "response missing id",
		}
	}
	tx.Raw = json.RawMessage(body)
	return &tx, nil
}
