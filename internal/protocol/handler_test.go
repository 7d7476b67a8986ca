package protocol

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"fables/internal/assets"
	"fables/internal/logging"
)

type recordingResolver struct {
	requests []Request
	inner    Resolver
}

func (r *recordingResolver) Resolve(req Request) Response {
	r.requests = append(r.requests, req)
	return r.inner.Resolve(req)
}

type panickingResolver struct{}

func (panickingResolver) Resolve(Request) Response { panic("boom") }

func TestHandlerServesAssets(t *testing.T) {
	resolver, _ := newTestResolver(t)
	srv := httptest.NewServer(NewHandler(resolver, logging.Discard(), HandlerOptions{Index: "play.htm"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/style/play.css")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(body) != string(testFiles["style/play.css"]) {
		t.Fatalf("unexpected body %q", body)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/css" {
		t.Fatalf("Content-Type %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); got != "*" {
		t.Fatalf("Access-Control-Allow-Headers %q", got)
	}
}

func TestHandlerMapsRootToIndex(t *testing.T) {
	inner, _ := newTestResolver(t)
	rec := &recordingResolver{inner: inner}
	h := NewHandler(rec, logging.Discard(), HandlerOptions{Index: "play.htm"})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "text/html" {
		t.Fatalf("expected the index document, got %q", w.Header().Get("Content-Type"))
	}
	if len(rec.requests) != 1 {
		t.Fatalf("expected one resolve, got %d", len(rec.requests))
	}
	got := rec.requests[0]
	if got.Path != "/play.htm" || got.Method != http.MethodGet || got.Scheme != Scheme {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestHandlerWithoutIndex(t *testing.T) {
	resolver, _ := newTestResolver(t)
	h := NewHandler(resolver, logging.Discard(), HandlerOptions{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for / without index, got %d", w.Code)
	}
}

func TestHandlerHeadHasNoBody(t *testing.T) {
	resolver, _ := newTestResolver(t)
	h := NewHandler(resolver, logging.Discard(), HandlerOptions{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/media/intro.mp3", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("HEAD wrote %d body bytes", w.Body.Len())
	}
	if got := w.Header().Get("Content-Length"); got != "5" {
		t.Fatalf("Content-Length %q, want 5", got)
	}
}

func TestHandlerRejectsOtherMethods(t *testing.T) {
	resolver, _ := newTestResolver(t)
	h := NewHandler(resolver, logging.Discard(), HandlerOptions{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/play.htm", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestHandlerConditionalGet(t *testing.T) {
	resolver, store := newTestResolver(t)
	asset, _ := store.Get("favicon.ico")
	h := NewHandler(resolver, logging.Discard(), HandlerOptions{})

	req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
	req.Header.Set("If-None-Match", asset.ETag)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("304 wrote a body")
	}
}

func TestHandlerRecoversFromPanics(t *testing.T) {
	h := NewHandler(panickingResolver{}, logging.Discard(), HandlerOptions{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/play.htm", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after a panic, got %d", w.Code)
	}
}

func TestHandlerLinksScriptFromIndexHead(t *testing.T) {
	const page = "<!DOCTYPE html><html><HEAD><script src=\"/wails/runtime.js\"></script></HEAD><body><script src=\"script/play.js\"></script></body></html>"
	store, err := assets.NewStore(map[string][]byte{"play.htm": []byte(page)})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	const script = "console.log('bridge')"
	h := NewHandler(NewAssetResolver(store, logging.Discard()), logging.Discard(), HandlerOptions{Index: "play.htm", Script: script})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	tag := `<script src="` + ScriptPath + `"></script>`
	want := strings.Replace(page, "</HEAD>", tag+"</HEAD>", 1)
	if w.Code != http.StatusOK || w.Body.String() != want {
		t.Fatalf("unexpected index document %d %q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Length"); got != strconv.Itoa(len(want)) {
		t.Fatalf("Content-Length %q, want %d", got, len(want))
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, ScriptPath, nil))
	if w.Code != http.StatusOK || w.Body.String() != script {
		t.Fatalf("script not served: %d %q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "text/javascript" {
		t.Fatalf("script Content-Type %q", got)
	}

	// Only the index document is rewritten.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/play.htm", nil))
	if w.Body.String() != page {
		t.Fatalf("direct request was rewritten: %q", w.Body.String())
	}
}

func TestHandlerScriptWithoutHead(t *testing.T) {
	resolver, _ := newTestResolver(t)
	h := NewHandler(resolver, logging.Discard(), HandlerOptions{Index: "play.htm", Script: "void 0"})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	want := `<script src="` + ScriptPath + `"></script>` + string(testFiles["play.htm"])
	if w.Body.String() != want {
		t.Fatalf("got %q, want %q", w.Body.String(), want)
	}
}

func TestHandlerWithoutScriptHasNoScriptRoute(t *testing.T) {
	resolver, _ := newTestResolver(t)
	h := NewHandler(resolver, logging.Discard(), HandlerOptions{Index: "play.htm"})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, ScriptPath, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
