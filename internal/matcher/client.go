package matcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is the origin used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:5000"

const (
	uploadField     = "resume_files[]"
	contentTypeJSON = "application/json"
)

// BreakerOptions configures the optional circuit breaker.
type BreakerOptions struct {
	Enabled     bool
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	Breaker BreakerOptions
	// Transport overrides the base round tripper. It is always wrapped for tracing.
	Transport http.RoundTripper
	// Jar overrides the session cookie jar.
	Jar http.CookieJar
}

// Client talks to the resume matching service. All calls share one cookie
// jar so the server-side session set by any endpoint follows every request.
type Client struct {
	BaseURL    *url.URL
	HTTPClient *http.Client

	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient creates a client for the given options.
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http or https: %q", raw)
	}

	jar := opts.Jar
	if jar == nil {
		j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		jar = j
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		BaseURL: base,
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
			Transport: otelhttp.NewTransport(transport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return r.Method + " " + r.URL.Path
				}),
			),
		},
	}

	if opts.Breaker.Enabled {
		c.breaker = newBreaker(opts.Breaker)
	}

	return c, nil
}

func newBreaker(opts BreakerOptions) *gobreaker.CircuitBreaker[*http.Response] {
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "resume-backend",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Client errors mean the service is up.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *statusError
			return errors.As(err, &se) && se.code < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

// UploadResumes posts the files as repeated multipart entries and returns
// the file list the server reports.
func (c *Client) UploadResumes(ctx context.Context, uploads []Upload) ([]FileRef, error) {
	if len(uploads) == 0 {
		return nil, opError(OpUpload, ErrNoFiles)
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for _, u := range uploads {
		part, err := w.CreateFormFile(uploadField, u.Name)
		if err != nil {
			return nil, opError(OpUpload, err)
		}
		if _, err := part.Write(u.Data); err != nil {
			return nil, opError(OpUpload, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, opError(OpUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload_resumes"), &b)
	if err != nil {
		return nil, opError(OpUpload, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var response uploadResponse
	if err := c.doJSON(req, &response); err != nil {
		return nil, opError(OpUpload, err)
	}

	logger.Info("uploaded %d resumes, server reports %d files", len(uploads), len(response.Files))
	return response.Files, nil
}

// MatchResumes asks the service to rank the uploaded resumes. The result
// order is the server's.
func (c *Client) MatchResumes(ctx context.Context, match MatchRequest) ([]MatchResult, error) {
	if match.SelectedSkills == nil {
		match.SelectedSkills = []string{}
	}
	body, err := json.Marshal(match)
	if err != nil {
		return nil, opError(OpMatch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("match_resumes"), bytes.NewReader(body))
	if err != nil {
		return nil, opError(OpMatch, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	var response matchResponse
	if err := c.doJSON(req, &response); err != nil {
		return nil, opError(OpMatch, err)
	}

	logger.Info("match returned %d results", len(response.Results))
	return response.Results, nil
}

// GetResume downloads one resume body.
func (c *Client) GetResume(ctx context.Context, name string) (*Resume, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("get_resume", name), nil)
	if err != nil {
		return nil, opError(OpGetResume, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, opError(OpGetResume, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, opError(OpGetResume, err)
	}

	return &Resume{
		Name:        name,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Cleanup asks the service to drop this session's uploads.
func (c *Client) Cleanup(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("cleanup"), http.NoBody)
	if err != nil {
		return opError(OpCleanup, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return opError(OpCleanup, err)
	}
	drain(resp)
	return nil
}

// endpoint joins path segments onto the base URL. Segments are path-escaped.
func (c *Client) endpoint(segments ...string) string {
	u := *c.BaseURL
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.RawPath = ""
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimRight(c.BaseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	return u.String()
}

func (c *Client) doJSON(req *http.Request, target any) error {
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// do sends the request through the breaker. Non-2xx responses are drained
// and returned as errors.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	logger.Debug("request %s %s", req.Method, req.URL.Redacted())

	send := func() (*http.Response, error) {
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			drain(resp)
			return nil, &statusError{code: resp.StatusCode}
		}
		return resp, nil
	}

	if c.breaker == nil {
		return send()
	}

	resp, err := c.breaker.Execute(send)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrBreakerOpen, err)
	}
	return resp, err
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
