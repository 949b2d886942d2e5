package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/plategen/pkg/buildinfo"
	perrors "github.com/matzehuels/plategen/pkg/errors"
	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/pipeline"
	"github.com/matzehuels/plategen/pkg/plate"
)

// HeaderCache reports whether the placement came from the cache ("hit" or "miss").
const HeaderCache = "X-Plategen-Cache"

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatHTML: "text/html; charset=utf-8",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatText: "text/plain; charset=utf-8",
}

// =============================================================================
// Browser routes
// =============================================================================

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := formData{
		Packers:       plate.PackerNames(),
		Default:       s.opts.Defaults.Packer,
		MaxUploadSize: s.opts.MaxUploadSize,
	}
	if data.Default == "" {
		data.Default = pipeline.DefaultPacker
	}
	if err := formPage.Execute(w, data); err != nil {
		s.logger.Error("render form", "error", err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(s.opts.MaxUploadSize); err != nil {
		s.writeHTMLError(w, r, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read upload"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeHTMLError(w, r, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "missing experiments file"))
		return
	}
	defer file.Close()

	format, err := perrors.ValidateUploadFilename(header.Filename)
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}
	req, err := plateio.Read(file, format)
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}

	opts, err := s.options(r.Form)
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}
	opts.Formats = []string{pipeline.FormatHTML}
	if opts.Title == "" {
		opts.Title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	artifacts, hit, err := s.layoutAndRender(r.Context(), req, opts)
	if err != nil {
		s.writeHTMLError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatHTML])
	w.Header().Set(HeaderCache, cacheStatus(hit))
	w.Write(artifacts[pipeline.FormatHTML])
}

// =============================================================================
// API routes
// =============================================================================

func (s *Server) handleAPILayout(w http.ResponseWriter, r *http.Request) {
	req, opts, err := s.decodeAPIRequest(w, r)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	l, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), req, opts)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.Header().Set(HeaderCache, cacheStatus(hit))
	if err := plateio.WriteLayout(l, w); err != nil {
		s.logger.Error("write layout", "error", err, "request_id", RequestID(r.Context()))
	}
}

func (s *Server) handleAPIRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeJSONError(w, r, err)
		return
	}

	req, opts, err := s.decodeAPIRequest(w, r)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	artifacts, hit, err := s.layoutAndRender(r.Context(), req, opts)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set(HeaderCache, cacheStatus(hit))
	w.Write(artifacts[format])
}

func (s *Server) decodeAPIRequest(w http.ResponseWriter, r *http.Request) (plateio.Request, pipeline.Options, error) {
	opts, err := s.options(r.URL.Query())
	if err != nil {
		return plateio.Request{}, opts, err
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	req, err := plateio.ReadJSON(r.Body)
	if err != nil {
		return plateio.Request{}, opts, err
	}
	return req, opts, nil
}

// pinger is implemented by cache backends that can report their health.
type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := buildinfo.Info()
	resp["status"] = "ok"
	status := http.StatusOK
	if p, ok := s.runner.Cache.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp["cache"] = "ok"
		}
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// layoutAndRender places the request and renders opts.Formats. It reports
// whether the placement came from the cache.
func (s *Server) layoutAndRender(ctx context.Context, req plateio.Request, opts pipeline.Options) (map[string][]byte, bool, error) {
	l, hit, err := s.runner.LayoutWithCacheInfo(ctx, req, opts)
	if err != nil {
		return nil, false, err
	}
	artifacts, _, err := s.runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}
	return artifacts, hit, nil
}

// options merges request parameters over the server defaults.
func (s *Server) options(v url.Values) (pipeline.Options, error) {
	opts := s.opts.Defaults
	opts.Formats = append([]string(nil), s.opts.Defaults.Formats...)
	opts.Logger = s.logger

	if p := v.Get("packer"); p != "" {
		opts.Packer = p
	}
	if seed := v.Get("seed"); seed != "" {
		n, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return opts, perrors.New(perrors.ErrCodeInvalidInput, "invalid seed %q", seed)
		}
		opts.Seed = n
	}
	if t := v.Get("title"); t != "" {
		opts.Title = t
	}
	if ws := v.Get("well_size"); ws != "" {
		f, err := strconv.ParseFloat(ws, 64)
		if err != nil || f <= 0 {
			return opts, perrors.New(perrors.ErrCodeInvalidInput, "invalid well_size %q", ws)
		}
		opts.WellSize = f
	}
	if labels := v.Get("labels"); labels != "" {
		on, err := strconv.ParseBool(labels)
		if err != nil {
			return opts, perrors.New(perrors.ErrCodeInvalidInput, "invalid labels %q", labels)
		}
		opts.NoLabels = !on
	}
	return opts, opts.ValidateForLayout()
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case perrors.IsConfiguration(err):
		return http.StatusBadRequest
	case perrors.Is(err, perrors.ErrCodeGeometry):
		return http.StatusUnprocessableEntity
	case perrors.Is(err, perrors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func newErrorResponse(r *http.Request, err error) errorResponse {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	return errorResponse{
		Code:      string(code),
		Message:   perrors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	}
}

func (s *Server) logError(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
		return
	}
	s.logger.Debug("request rejected", "error", err, "request_id", RequestID(r.Context()))
}

func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logError(r, status, err)
	writeJSON(w, status, newErrorResponse(r, err))
}

func (s *Server) writeHTMLError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logError(r, status, err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := errorPage.Execute(w, errorData{Status: status, Error: newErrorResponse(r, err)}); err != nil {
		s.logger.Error("render error page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
