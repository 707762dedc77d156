package httpexec

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/hypernetix/rclib/domain"
)

func strptr(s string) *string { return &s }

func TestDoSendsMethodHeadersAndBody(t *testing.T) {
	var got struct {
		method, path, auth, agent, body string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.agent = r.Header.Get("User-Agent")
		got.body = string(b)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"42"}`))
	}))
	defer server.Close()

	exec := NewExecutor(WithUserAgent("rclib-test/1.0"))
	resp, err := exec.Do(context.Background(), domain.RequestDescriptor{
		BaseURL:  server.URL,
		Method:   "post",
		Endpoint: "/jobs",
		Headers:  []string{"Authorization: Bearer abc"},
		Body:     strptr(`{"input":"x"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusCreated || !resp.OK() {
		t.Fatalf("expected 201, got %d", resp.Status)
	}
	if resp.Body != `{"id":"42"}` {
		t.Fatalf("expected body text returned, got %q", resp.Body)
	}
	if got.method != "POST" || got.path != "/jobs" {
		t.Fatalf("unexpected request: %s %s", got.method, got.path)
	}
	if got.auth != "Bearer abc" {
		t.Fatalf("expected Authorization header, got %q", got.auth)
	}
	if got.agent != "rclib-test/1.0" {
		t.Fatalf("expected user agent, got %q", got.agent)
	}
	if got.body != `{"input":"x"}` {
		t.Fatalf("expected body sent, got %q", got.body)
	}
}

func TestDoReturnsBodyOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"missing"}`))
	}))
	defer server.Close()

	exec := NewExecutor()
	resp, err := exec.Do(context.Background(), domain.RequestDescriptor{
		BaseURL:  server.URL,
		Method:   "GET",
		Endpoint: "/nope",
	})
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error, got %v", err)
	}
	if resp.OK() {
		t.Fatalf("expected semantic failure for 404")
	}
	if resp.Body != `{"error":"missing"}` {
		t.Fatalf("expected body text kept, got %q", resp.Body)
	}
}

func TestDoConnectionRefusedIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	exec := NewExecutor()
	_, err := exec.Do(context.Background(), domain.RequestDescriptor{
		BaseURL:  server.URL,
		Method:   "GET",
		Endpoint: "/",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindNetwork) {
		t.Fatalf("expected network kind, got %v", err)
	}
}

func TestDoRelativeEndpointWithoutBase(t *testing.T) {
	exec := NewExecutor()
	_, err := exec.Do(context.Background(), domain.RequestDescriptor{
		Method:   "GET",
		Endpoint: "/users",
	})
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestDoUnsupportedMethod(t *testing.T) {
	exec := NewExecutor()
	_, err := exec.Do(context.Background(), domain.RequestDescriptor{
		Method:   "TRACE",
		Endpoint: "https://api.example.com/x",
	})
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestDoMultipartUpload(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/report.txt"
	if err := writeFile(path, "file-content"); err != nil {
		t.Fatalf("failed writing fixture: %v", err)
	}

	var gotContent string
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed parsing multipart form: %v", err)
			return
		}
		f, hdr, err := r.FormFile("report")
		if err != nil {
			t.Errorf("missing form file: %v", err)
			return
		}
		defer f.Close()
		if hdr.Filename != "report.txt" {
			t.Errorf("expected filename report.txt, got %q", hdr.Filename)
		}
		b, _ := io.ReadAll(f)
		gotContent = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exec := NewExecutor()
	resp, err := exec.Do(context.Background(), domain.RequestDescriptor{
		BaseURL:   server.URL,
		Method:    "POST",
		Endpoint:  "/upload",
		Headers:   []string{"Content-Type: application/json"}, // must be dropped
		Multipart: true,
		FileFields: map[string]string{
			"report": path,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() {
		t.Fatalf("expected 2xx, got %d", resp.Status)
	}
	if gotContent != "file-content" {
		t.Fatalf("expected file uploaded, got %q", gotContent)
	}
	if gotContentType == "application/json" {
		t.Fatalf("expected multipart content type, got %q", gotContentType)
	}
}

func TestDoMultipartUnreadableFileFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request should be sent")
	}))
	defer server.Close()

	exec := NewExecutor()
	_, err := exec.Do(context.Background(), domain.RequestDescriptor{
		BaseURL:    server.URL,
		Method:     "POST",
		Endpoint:   "/upload",
		Multipart:  true,
		FileFields: map[string]string{"report": "/nonexistent/report.txt"},
	})
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestFromExecutionConfigAppliesTimeouts(t *testing.T) {
	cfg := domain.NewExecutionConfig("rclib-test/1.0")
	cfg.RequestTimeout = 12345
	exec := FromExecutionConfig(cfg, nil)
	if exec.client.Timeout != 12345 {
		t.Fatalf("expected request timeout applied, got %v", exec.client.Timeout)
	}
	if exec.userAgent != "rclib-test/1.0" {
		t.Fatalf("expected user agent applied, got %q", exec.userAgent)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
