package web

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

const indexTemplate = `<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Serving {{.Request.URL.Path}} on {{.Host}} (up {{.Uptime}})</p>
</body>
</html>
`

const errorTemplate = `<!DOCTYPE html>
<html>
<head><title>Error {{.StatusCode}}</title></head>
<body>
<h1>{{.StatusCode}}</h1>
<p>{{.Error}}</p>
</body>
</html>
`

func TestHomePage(t *testing.T) {
	srv, webroot := newTestServer(t)
	writeFile(t, filepath.Join(webroot, "templates", "index.html"), []byte(indexTemplate))

	w := doRequest(srv, http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /: expected status 200, got %d", w.Code)
	}
	// The header is set explicitly, without a charset parameter
	if ct := w.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("GET /: expected Content-Type text/html, got %s", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<h1>Home</h1>") {
		t.Errorf("GET /: expected rendered title in body, got %q", body)
	}
	// httptest requests carry Host example.com, which the template sees
	if !strings.Contains(body, "Serving / on example.com") {
		t.Errorf("GET /: expected request data in body, got %q", body)
	}
}

func TestHomePageMissingTemplate(t *testing.T) {
	srv, _ := newTestServer(t)

	// No index.html and no error.html: plain text fallback carries the code
	w := doRequest(srv, http.MethodGet, "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("GET / without template: expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "500") {
		t.Errorf("GET / without template: expected 500 in body, got %q", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Template error") {
		t.Errorf("GET / without template: expected error message in body, got %q", w.Body.String())
	}
}

func TestHomePageMissingTemplateWithErrorPage(t *testing.T) {
	srv, webroot := newTestServer(t)
	writeFile(t, filepath.Join(webroot, "templates", "error.html"), []byte(errorTemplate))

	w := doRequest(srv, http.MethodGet, "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("GET / without index.html: expected status 500, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("GET / error page: expected Content-Type text/html, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), "<h1>500</h1>") {
		t.Errorf("GET / error page: expected rendered status code, got %q", w.Body.String())
	}
}

func TestHomePageForwardedHost(t *testing.T) {
	srv, webroot := newTestServer(t)
	writeFile(t, filepath.Join(webroot, "templates", "index.html"), []byte(indexTemplate))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	req.Header.Set("X-Forwarded-Host", "site.example.org")
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET / with X-Forwarded-Host: expected status 200, got %d", w.Code)
	}
	// The proxy middleware rewrites the host the template renders
	if !strings.Contains(w.Body.String(), "site.example.org") {
		t.Errorf("GET / with X-Forwarded-Host: expected forwarded host in body, got %q", w.Body.String())
	}
}

func TestHomePageForwardedHostUntrustedPeer(t *testing.T) {
	srv, webroot := newTestServer(t)
	writeFile(t, filepath.Join(webroot, "templates", "index.html"), []byte(indexTemplate))

	// httptest's default peer 192.0.2.1 is not a trusted proxy, so the
	// forwarded host must not replace the real one
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Host", "spoofed.example.org")
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET / with spoofed host: expected status 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "spoofed.example.org") {
		t.Errorf("GET /: forwarded host from untrusted peer reached the template, got %q", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "example.com") {
		t.Errorf("GET /: expected the real host in body, got %q", w.Body.String())
	}
}

func TestNotFoundPage(t *testing.T) {
	srv, webroot := newTestServer(t)
	writeFile(t, filepath.Join(webroot, "templates", "error.html"), []byte(errorTemplate))

	w := doRequest(srv, http.MethodGet, "/no/such/page")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /no/such/page: expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<h1>404</h1>") {
		t.Errorf("GET /no/such/page: expected rendered error page, got %q", w.Body.String())
	}
}

func TestNotFoundPlainFallback(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/no/such/page")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /no/such/page: expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "404") {
		t.Errorf("GET /no/such/page: expected 404 in fallback body, got %q", w.Body.String())
	}
}
