package httpcache

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestComputeETagDeterministic(t *testing.T) {
	a := ComputeETag([]byte(`{"n":1}`))
	b := ComputeETag([]byte(`{"n":1}`))
	if a != b {
		t.Fatalf("identical bodies must hash identically: %s vs %s", a, b)
	}
	if a == ComputeETag([]byte(`{"n":2}`)) {
		t.Fatal("different bodies must hash differently")
	}
	if a[0] != '"' || a[len(a)-1] != '"' {
		t.Fatalf("etag must be quoted: %s", a)
	}
}

func TestIsConditionalHit(t *testing.T) {
	etag := ComputeETag([]byte("body"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if IsConditionalHit(r, etag) {
		t.Fatal("no header means no hit")
	}

	r.Header.Set("If-None-Match", etag)
	if !IsConditionalHit(r, etag) {
		t.Fatal("matching tag must hit")
	}

	r.Header.Set("If-None-Match", `"other", `+etag)
	if !IsConditionalHit(r, etag) {
		t.Fatal("tag in a list must hit")
	}

	r.Header.Set("If-None-Match", "W/"+etag)
	if !IsConditionalHit(r, etag) {
		t.Fatal("weak comparison must hit")
	}

	r.Header.Set("If-None-Match", "*")
	if !IsConditionalHit(r, etag) {
		t.Fatal("wildcard must hit")
	}

	r.Header.Set("If-None-Match", `"stale"`)
	if IsConditionalHit(r, etag) {
		t.Fatal("non-matching tag must miss")
	}
}

func TestWriteJSONConditionalFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := []byte(`{"ok":true}`)

	// Gin defers status writes to the engine's request loop, so the
	// conditional flow is exercised through a routed request.
	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		WriteJSON(c, body)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	if w.Header().Get("Vary") != "Authorization" {
		t.Fatalf("expected Vary: Authorization, got %q", w.Header().Get("Vary"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("304 must not carry a body, got %q", w.Body.String())
	}
}
