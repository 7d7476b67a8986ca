// Package protocol answers the rendering surface's custom-scheme requests
// (app://local/<path>) from the in-memory asset store.
package protocol

import (
	"net/http"
	"strconv"
	"strings"

	"fables/internal/assets"
	"fables/internal/logging"
)

// Default scheme and authority of the shell's document URLs.
const (
	Scheme    = "app"
	Authority = "local"
)

// CacheControl is sent with every asset.
const CacheControl = "private, max-age=3600"

const octetStream = "application/octet-stream"

var mimeTypes = map[string]string{
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "text/javascript",
	"json": "application/json",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"ico":  "image/x-icon",
	"mp3":  "audio/mpeg",
}

// Request is one resource fetch from the rendering surface. Path always
// starts with "/".
type Request struct {
	Method    string
	Scheme    string
	Authority string
	Path      string
	// IfNoneMatch carries the client's cached ETag, if any.
	IfNoneMatch string
}

// Header is a single response header; order is preserved.
type Header struct {
	Name  string
	Value string
}

// Response is fully populated before it is returned.
type Response struct {
	StatusCode int
	Headers    []Header
	Body       []byte
}

// Header returns the first value of the named header, matched
// case-insensitively.
func (r Response) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Resolver answers protocol requests. Implementations must be safe for
// concurrent use.
type Resolver interface {
	Resolve(req Request) Response
}

// AssetStore is the lookup the resolver needs from the bundle.
type AssetStore interface {
	Get(path string) (assets.Asset, error)
}

// AssetResolver serves assets by exact path. It holds no mutable state.
type AssetResolver struct {
	store AssetStore
	log   *logging.Logger
}

func NewAssetResolver(store AssetStore, log *logging.Logger) *AssetResolver {
	if log == nil {
		log = logging.Discard()
	}
	return &AssetResolver{store: store, log: log}
}

// MimeType maps the text after the last "." of p to a content type.
func MimeType(p string) string {
	dot := strings.LastIndexByte(p, '.')
	if dot < 0 {
		return octetStream
	}
	if t, ok := mimeTypes[p[dot+1:]]; ok {
		return t
	}
	return octetStream
}

func corsHeaders() []Header {
	return []Header{
		{"Access-Control-Allow-Origin", "*"},
		{"Access-Control-Allow-Methods", "*"},
		{"Access-Control-Allow-Headers", "*"},
	}
}

func (r *AssetResolver) Resolve(req Request) Response {
	r.log.Tracef("resolve %s://%s%s", req.Scheme, req.Authority, req.Path)

	rel := strings.TrimPrefix(req.Path, "/")
	asset, err := r.store.Get(rel)
	if err != nil {
		r.log.Warnf("%v", err)
		return notFound(req.Path)
	}
	r.log.Debugf("load file %s: %d", req.Path, len(asset.Contents))

	headers := make([]Header, 0, 7)
	headers = append(headers,
		Header{"Content-Type", MimeType(rel)},
		Header{"Content-Length", strconv.Itoa(len(asset.Contents))},
		Header{"Cache-Control", CacheControl},
	)
	headers = append(headers, corsHeaders()...)
	if asset.ETag != "" {
		headers = append(headers, Header{"ETag", asset.ETag})
	}

	if asset.ETag != "" && etagMatches(req.IfNoneMatch, asset.ETag) {
		notModified := make([]Header, 0, len(headers)-1)
		for _, h := range headers {
			if h.Name != "Content-Length" {
				notModified = append(notModified, h)
			}
		}
		return Response{StatusCode: http.StatusNotModified, Headers: notModified}
	}

	return Response{StatusCode: http.StatusOK, Headers: headers, Body: asset.Contents}
}

func notFound(path string) Response {
	body := []byte("not found: " + path)
	headers := []Header{
		{"Content-Type", "text/plain; charset=utf-8"},
		{"Content-Length", strconv.Itoa(len(body))},
	}
	return Response{
		StatusCode: http.StatusNotFound,
		Headers:    append(headers, corsHeaders()...),
		Body:       body,
	}
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
