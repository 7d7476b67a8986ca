package protocol

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"fables/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HandlerOptions tune the http.Handler built by NewHandler.
type HandlerOptions struct {
	// Scheme and Authority fill in requests that arrive without them.
	Scheme    string
	Authority string
	// Index is the asset served for "/".
	Index string
	// Script, when set, is served at ScriptPath and referenced from the
	// <head> of the index document so it runs before the page's scripts.
	Script string
}

// ScriptPath is where HandlerOptions.Script is served.
const ScriptPath = "/__bridge.js"

type handler struct {
	resolver Resolver
	log      *logging.Logger
	opts     HandlerOptions
}

// NewHandler exposes a Resolver as an http.Handler, which is how embedding
// toolkits hand document requests to the host. Only GET and HEAD are
// answered.
func NewHandler(resolver Resolver, log *logging.Logger, opts HandlerOptions) http.Handler {
	if log == nil {
		log = logging.Discard()
	}
	if opts.Scheme == "" {
		opts.Scheme = Scheme
	}
	if opts.Authority == "" {
		opts.Authority = Authority
	}
	h := &handler{resolver: resolver, log: log, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if opts.Script != "" {
		r.Get(ScriptPath, h.serveScript)
		r.Head(ScriptPath, h.serveScript)
	}
	r.Get("/*", h.serve)
	r.Head("/*", h.serve)
	return r
}

func (h *handler) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	index := path == "" || path == "/"
	if index && h.opts.Index != "" {
		path = "/" + h.opts.Index
	}
	if path == "" {
		path = "/"
	}

	req := Request{
		Method:      r.Method,
		Scheme:      r.URL.Scheme,
		Authority:   r.Host,
		Path:        path,
		IfNoneMatch: r.Header.Get("If-None-Match"),
	}
	if req.Scheme == "" {
		req.Scheme = h.opts.Scheme
	}
	if req.Authority == "" {
		req.Authority = h.opts.Authority
	}

	resp := h.resolver.Resolve(req)
	if index && h.opts.Script != "" && resp.StatusCode == http.StatusOK {
		resp = withScript(resp, ScriptPath)
	}
	for _, header := range resp.Headers {
		w.Header().Add(header.Name, header.Value)
	}
	w.WriteHeader(resp.StatusCode)
	if r.Method == http.MethodHead || len(resp.Body) == 0 {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		h.log.Debugf("write %s: %v", path, err)
	}
}

func (h *handler) serveScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", MimeType(ScriptPath))
	w.Header().Set("Content-Length", strconv.Itoa(len(h.opts.Script)))
	w.Header().Set("Cache-Control", "no-cache")
	for _, header := range corsHeaders() {
		w.Header().Set(header.Name, header.Value)
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write([]byte(h.opts.Script)); err != nil {
		h.log.Debugf("write %s: %v", ScriptPath, err)
	}
}

// withScript adds a <script src> tag for src to an HTML response. The tag
// goes last in <head>, after anything the embedding toolkit prepends there,
// or first in the document when there is no head.
func withScript(resp Response, src string) Response {
	if mime, _ := resp.Header("Content-Type"); mime != "text/html" {
		return resp
	}
	tag := []byte(`<script src="` + src + `"></script>`)
	at := indexFold(resp.Body, []byte("</head>"))
	if at < 0 {
		at = 0
	}
	body := make([]byte, 0, len(resp.Body)+len(tag))
	body = append(body, resp.Body[:at]...)
	body = append(body, tag...)
	body = append(body, resp.Body[at:]...)

	headers := make([]Header, len(resp.Headers))
	for i, h := range resp.Headers {
		if strings.EqualFold(h.Name, "Content-Length") {
			h.Value = strconv.Itoa(len(body))
		}
		headers[i] = h
	}
	resp.Headers = headers
	resp.Body = body
	return resp
}

// indexFold is bytes.Index with ASCII case folding; offsets stay valid for
// the original slice.
func indexFold(s, sep []byte) int {
	for i := 0; i+len(sep) <= len(s); i++ {
		if bytes.EqualFold(s[i:i+len(sep)], sep) {
			return i
		}
	}
	return -1
}
