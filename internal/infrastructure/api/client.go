// Package api is the HTTP client for the inventory REST API.
// It attaches the session token, clears the session on 401 and normalizes
// every response into the domain schemas.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/infrastructure/auth"
	"github.com/erp/dashboard/internal/infrastructure/logger"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"github.com/erp/dashboard/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:5194/api"

// Config configures the client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	UserAgent string
}

// Client talks to the inventory API
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	session    *auth.Session
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *metrics.Recorder
	common     service

	Auth      *AuthService
	Products  *ProductService
	Inventory *InventoryService
	Sales     *SalesService
	Stores    *StoreService
	Jobs      *JobService
	Imports   *ImportService
	Dashboard *DashboardService
	Reports   *ReportService
}

type service struct {
	client *Client
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics records request metrics
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client bound to session. A nil session sends anonymous requests.
func NewClient(cfg Config, session *auth.Session, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "erp-dashboard/1.0"
	}
	if session == nil {
		session = auth.NewSession()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		session:   session,
		logger:    zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}

	c.common.client = c
	c.Auth = (*AuthService)(&c.common)
	c.Products = (*ProductService)(&c.common)
	c.Inventory = (*InventoryService)(&c.common)
	c.Sales = (*SalesService)(&c.common)
	c.Stores = (*StoreService)(&c.common)
	c.Jobs = (*JobService)(&c.common)
	c.Imports = (*ImportService)(&c.common)
	c.Dashboard = (*DashboardService)(&c.common)
	c.Reports = (*ReportService)(&c.common)
	return c, nil
}

// Session returns the session the client authenticates with
func (c *Client) Session() *auth.Session {
	return c.session
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request is one call to the API
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   io.Reader
	// ContentType defaults to application/json when Body is set
	ContentType string
	Accept      string
	// Endpoint labels metrics and spans; defaults to Path. Use a template for paths carrying ids.
	Endpoint string
}

// Response is a fully read API response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Do executes the request. Non-2xx responses are returned as *APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = req.Path
	}

	ctx, span := telemetry.StartSpan(ctx, "api "+req.Method+" "+endpoint,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("http.request.method", req.Method),
		telemetry.WithAttribute("url.template", endpoint),
	)
	defer span.End()

	if err := c.wait(ctx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, req.Body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	requestID := logger.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("User-Agent", c.userAgent)
	accept := req.Accept
	if accept == "" {
		accept = "application/json"
	}
	httpReq.Header.Set("Accept", accept)
	if req.Body != nil {
		ct := req.ContentType
		if ct == "" {
			ct = "application/json"
		}
		httpReq.Header.Set("Content-Type", ct)
	}
	if token := c.session.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)
	log.Debug("API request")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveAPIRequest(endpoint, 0, time.Since(start))
		telemetry.RecordError(span, err)
		log.Debug("API request failed", zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	duration := time.Since(start)
	c.metrics.ObserveAPIRequest(endpoint, httpResp.StatusCode, duration)
	telemetry.SetAttributes(span, "http.response.status_code", httpResp.StatusCode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	log.Debug("API response",
		zap.Int("status", httpResp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration),
	)

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		Duration:   duration,
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := decodeError(httpResp.StatusCode, body)
		telemetry.RecordError(span, apiErr)
		if httpResp.StatusCode == http.StatusUnauthorized {
			log.Info("API rejected credentials, clearing session")
			c.session.Clear(ctx, auth.EventUnauthorized)
		}
		return resp, apiErr
	}
	return resp, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	c.metrics.ObserveRateLimitWait(time.Since(start))
	return nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// PostJSON performs a POST with a JSON body
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: bytes.NewReader(data)})
}

// getJSON performs a GET and decodes the JSON body into v
func (c *Client) getJSON(ctx context.Context, path, endpoint string, query url.Values, v any) error {
	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query, Endpoint: endpoint})
	if err != nil {
		return err
	}
	return decodeBody(resp, v)
}

func decodeBody(resp *Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
