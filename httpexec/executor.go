package httpexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hypernetix/rclib/domain"
	"github.com/hypernetix/rclib/logger"
	"github.com/hypernetix/rclib/ports"
)

// Executor issues exactly one HTTP call per descriptor.
type Executor struct {
	client    *http.Client
	userAgent string
	log       *slog.Logger
}

type Option func(*Executor)

// WithClient sets a custom HTTP client.
func WithClient(client *http.Client) Option {
	return func(e *Executor) { e.client = client }
}

// WithUserAgent sets the User-Agent attached to every request.
func WithUserAgent(ua string) Option {
	return func(e *Executor) { e.userAgent = ua }
}

// WithLogger routes request/response summaries to the given logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// NewExecutor builds an Executor with the default client.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		client: NewClient(DefaultClientConfig()),
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromExecutionConfig builds an Executor whose client carries the
// invocation's connect/request timeouts and user agent.
func FromExecutionConfig(cfg domain.ExecutionConfig, log *slog.Logger) *Executor {
	cc := DefaultClientConfig()
	if cfg.ConnTimeout > 0 {
		cc.ConnTimeout = cfg.ConnTimeout
	}
	if cfg.RequestTimeout > 0 {
		cc.RequestTimeout = cfg.RequestTimeout
	}
	opts := []Option{
		WithClient(NewClient(cc)),
		WithUserAgent(cfg.UserAgent),
	}
	if log != nil {
		opts = append(opts, WithLogger(log))
	}
	return NewExecutor(opts...)
}

var _ ports.RequestExecutor = (*Executor)(nil)

// Do sends the descriptor's request and returns the status plus body text.
// A non-2xx status is not an error here: the Response carries it and the
// caller decides. Transport failures return a network-kinded error with no
// body.
func (e *Executor) Do(ctx context.Context, desc domain.RequestDescriptor) (domain.Response, error) {
	url, err := desc.ResolveURL()
	if err != nil {
		return domain.Response{}, err
	}
	method, err := domain.ParseMethod(desc.Method)
	if err != nil {
		return domain.Response{}, err
	}
	headers, err := domain.ParseHeaders(desc.Headers)
	if err != nil {
		return domain.Response{}, err
	}

	var body io.Reader
	contentType := ""
	if desc.Multipart && len(desc.FileFields) > 0 {
		// The transport owns Content-Type for multipart, boundary included.
		headers.Del("Content-Type")
		form, ct, err := buildMultipartForm(desc.FileFields)
		if err != nil {
			return domain.Response{}, err
		}
		body = form
		contentType = ct
	} else if desc.Body != nil {
		body = strings.NewReader(*desc.Body)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), url, body)
	if err != nil {
		return domain.Response{}, &domain.OpError{Op: "httpexec.build", Kind: domain.KindInvalidConfig, Err: err}
	}
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Set(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if e.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	e.log.Debug("request", "method", method, "url", url, "headers", len(desc.Headers))

	start := time.Now()
	resp, err := e.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return domain.Response{}, &domain.OpError{Op: "httpexec.do", Kind: domain.KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Response{}, &domain.OpError{Op: "httpexec.read", Kind: domain.KindNetwork, Err: err}
	}

	e.log.Debug("response", "status", resp.StatusCode, "url", url, "elapsed_ms", elapsed.Milliseconds())

	return domain.Response{Status: resp.StatusCode, Body: string(text)}, nil
}

// buildMultipartForm reads every file fully into memory and encodes the
// form. An unreadable file fails the whole request.
func buildMultipartForm(fileFields map[string]string) (io.Reader, string, error) {
	fields := make([]string, 0, len(fileFields))
	for f := range fileFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range fields {
		path := fileFields[field]
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, "", &domain.OpError{
				Op:   "httpexec.multipart",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("failed to read file %q: %w", path, err),
			}
		}
		part, err := w.CreateFormFile(field, filepath.Base(path))
		if err != nil {
			return nil, "", &domain.OpError{Op: "httpexec.multipart", Kind: domain.KindInvalidConfig, Err: err}
		}
		if _, err := part.Write(content); err != nil {
			return nil, "", &domain.OpError{Op: "httpexec.multipart", Kind: domain.KindInvalidConfig, Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", &domain.OpError{Op: "httpexec.multipart", Kind: domain.KindInvalidConfig, Err: err}
	}
	return &buf, w.FormDataContentType(), nil
}
