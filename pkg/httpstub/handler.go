package httpstub

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/stubserver/pkg/expect"
	"github.com/getmockd/stubserver/pkg/httputil"
	"github.com/getmockd/stubserver/pkg/logging"
	"github.com/getmockd/stubserver/pkg/requestlog"
)

// MaxRequestBodySize is the largest request body the handler reads (10MB).
const MaxRequestBodySize = 10 << 20

// NearMissHeader carries the number of near misses on unmatched responses.
const NearMissHeader = "X-Stub-Near-Misses"

// Handler matches requests against a registry and writes the declared
// responses.
type Handler struct {
	registry *expect.Registry
	log      *slog.Logger
	requests requestlog.Logger
	baseDir  string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the operational logger.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithHandlerRequestLog records every request to l.
func WithHandlerRequestLog(l requestlog.Logger) HandlerOption {
	return func(h *Handler) {
		h.requests = l
	}
}

// WithHandlerBaseDir resolves relative file response paths against dir.
func WithHandlerBaseDir(dir string) HandlerOption {
	return func(h *Handler) {
		h.baseDir = dir
	}
}

// NewHandler creates a Handler for registry.
func NewHandler(registry *expect.Registry, opts ...HandlerOption) *Handler {
	h := &Handler{
		registry: registry,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	entry := &requestlog.Entry{
		Timestamp:   start,
		Protocol:    requestlog.ProtocolHTTP,
		Method:      r.Method,
		Path:        r.URL.Path,
		QueryString: r.URL.RawQuery,
		Headers:     r.Header.Clone(),
		RemoteAddr:  httputil.ClientIP(r),
	}
	defer func() {
		entry.DurationMs = int(time.Since(start).Milliseconds())
		if h.requests != nil {
			h.requests.Log(entry)
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.log.Warn("request body too large", "path", r.URL.Path, "limit", MaxRequestBodySize)
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large",
				"request body exceeds maximum allowed size")
			entry.ResponseStatus = http.StatusRequestEntityTooLarge
			entry.Error = err.Error()
			return
		}
		h.log.Warn("failed to read request body", "path", r.URL.Path, "error", err)
		httputil.WriteError(w, http.StatusBadRequest, "body_read_error",
			"failed to read request body")
		entry.ResponseStatus = http.StatusBadRequest
		entry.Error = err.Error()
		entry.SetBody(body)
		return
	}
	entry.SetBody(body)

	req := expect.NewRequest(r, body)
	exp, ok := h.registry.Match(req)
	if !ok {
		entry.ResponseStatus, entry.NearMisses = h.writeNoMatch(w, req)
		entry.Error = "no expectation matched"
		return
	}

	entry.MatchedID = exp.ID
	entry.ResponseStatus = h.writeResponse(w, exp.Response)
	h.log.Debug("request matched",
		"method", r.Method,
		"path", r.URL.Path,
		"expectation_id", exp.ID,
		"status", entry.ResponseStatus,
	)
}

// writeResponse writes resp and returns the status actually sent.
func (h *Handler) writeResponse(w http.ResponseWriter, resp expect.Response) int {
	var body []byte
	switch resp.Kind {
	case expect.KindContent:
		body = resp.Content
	case expect.KindFile:
		path := resp.File
		if !filepath.IsAbs(path) && h.baseDir != "" {
			path = filepath.Join(h.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			h.log.Error("failed to read response file", "file", path, "error", err)
			httputil.WriteError(w, http.StatusBadGateway, "body_file_error", "failed to read response file: "+err.Error())
			return http.StatusBadGateway
		}
		body = data
	}

	userSetContentType := false
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
		if strings.EqualFold(name, "Content-Type") {
			userSetContentType = true
		}
	}

	switch {
	case resp.MimeType != "":
		w.Header().Set("Content-Type", resp.MimeType)
	case userSetContentType || len(body) == 0:
	case looksLikeJSON(body):
		w.Header().Set("Content-Type", "application/json")
	case looksLikeXML(body):
		w.Header().Set("Content-Type", "application/xml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}

	w.WriteHeader(resp.Status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
	return resp.Status
}

// noMatchResponse is the diagnostic body of an unmatched request.
type noMatchResponse struct {
	Error      string      `json:"error"`
	Message    string      `json:"message"`
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	NearMisses interface{} `json:"nearMisses,omitempty"`
}

func (h *Handler) writeNoMatch(w http.ResponseWriter, req *expect.Request) (int, []requestlog.NearMissInfo) {
	nearMisses := h.registry.NearMisses(req, 3)

	h.log.Warn("unmatched request",
		"method", req.Method,
		"path", req.Path,
		"near_misses", len(nearMisses),
	)

	resp := noMatchResponse{
		Error:   "no_match",
		Message: "no expectation matched " + req.Method + " " + req.Path,
		Method:  req.Method,
		Path:    req.Path,
	}
	if len(nearMisses) > 0 {
		resp.NearMisses = nearMisses
	}

	w.Header().Set(NearMissHeader, strconv.Itoa(len(nearMisses)))
	httputil.WriteJSON(w, http.StatusInternalServerError, resp)

	infos := make([]requestlog.NearMissInfo, 0, len(nearMisses))
	for _, nm := range nearMisses {
		infos = append(infos, requestlog.NearMissInfo{
			ExpectationID:   nm.ExpectationID,
			Name:            nm.Name,
			MatchPercentage: nm.MatchPercentage,
			Reason:          nm.Reason,
		})
	}
	return http.StatusInternalServerError, infos
}

func looksLikeJSON(b []byte) bool {
	s := strings.TrimSpace(string(b))
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}

func looksLikeXML(b []byte) bool {
	s := strings.TrimSpace(string(b))
	return strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")
}
