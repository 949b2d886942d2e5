package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/plategen/pkg/cache"
	perrors "github.com/matzehuels/plategen/pkg/errors"
	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/observability"
	"github.com/matzehuels/plategen/pkg/pipeline"
)

const experimentsJSON = `{
  "max_well_count": 96,
  "sample_list": [["S1", "S2"], ["S3"]],
  "reagent_list": [["R1", "R2"], ["R3"]],
  "replicate_count": [3, 2]
}`

func newTestServer(t *testing.T, c cache.Cache) *Server {
	t.Helper()
	return New(pipeline.NewRunner(c, nil, nil), nil, Options{})
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write([]byte(content))
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestHealthDegradedCache(t *testing.T) {
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		Attempts:    1,
	})
	defer rc.Close()

	s := newTestServer(t, rc)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	generated := rec.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(generated); err != nil {
		t.Errorf("generated request ID %q is not a uuid", generated)
	}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, id)
	if got := do(t, s, req).Header().Get(HeaderRequestID); got != id {
		t.Errorf("request ID = %q, want incoming %q", got, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	if got := do(t, s, req).Header().Get(HeaderRequestID); got == "<script>" {
		t.Error("malformed incoming request ID should be replaced")
	}
}

func TestForm(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`name="file"`, `enctype="multipart/form-data"`, `value="ffd-area"`, `value="ffd" selected`} {
		if !strings.Contains(body, want) {
			t.Errorf("form missing %q", want)
		}
	}
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{"json", "plate run.json", experimentsJSON},
		{"yaml", "run.yaml", "max_well_count: 96\nsample_list: [[S1, S2], [S3]]\nreagent_list: [[R1, R2], [R3]]\nreplicate_count: [3, 2]\n"},
		{"toml", "run.toml", "max_well_count = 96\nsample_list = [[\"S1\", \"S2\"], [\"S3\"]]\nreagent_list = [[\"R1\", \"R2\"], [\"R3\"]]\nreplicate_count = [3, 2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			rec := do(t, s, uploadRequest(t, tt.filename, tt.content, map[string]string{"seed": "7"}))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q, want text/html", ct)
			}
			body := rec.Body.String()
			if !strings.Contains(body, "<svg") {
				t.Error("response should embed the plate SVG")
			}
			for _, reagent := range []string{"R1", "R2", "R3"} {
				if !strings.Contains(body, reagent) {
					t.Errorf("response missing reagent %s", reagent)
				}
			}
		})
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		fields   map[string]string
		status   int
		code     perrors.Code
	}{
		{"missing file", "", "", nil, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"bad extension", "run.csv", experimentsJSON, nil, http.StatusBadRequest, perrors.ErrCodeInvalidFormat},
		{"malformed json", "run.json", "{", nil, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"bad plate size", "run.json", strings.Replace(experimentsJSON, "96", "48", 1), nil, http.StatusBadRequest, perrors.ErrCodeInvalidPlateSize},
		{"unknown packer", "run.json", experimentsJSON, map[string]string{"packer": "best"}, http.StatusBadRequest, perrors.ErrCodeInvalidPacker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			rec := do(t, s, uploadRequest(t, tt.filename, tt.content, tt.fields))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), string(tt.code)) {
				t.Errorf("error page should name %s:\n%s", tt.code, rec.Body.String())
			}
		})
	}
}

func TestAPILayout(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/layout?seed=3", strings.NewReader(experimentsJSON))
	rec := do(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	l, err := plateio.UnmarshalLayout(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(l.Plates) != 1 {
		t.Errorf("plates = %d, want 1", len(l.Plates))
	}
	if l.Filled() != 14 {
		t.Errorf("filled = %d, want 14", l.Filled())
	}
	if got := strings.Join(l.Legend, ","); got != "R1,R2,R3" {
		t.Errorf("legend = %s, want R1,R2,R3", got)
	}
	if l.PlateSize != 96 {
		t.Errorf("plate size = %d, want 96", l.PlateSize)
	}
}

func TestAPILayoutCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, fc)

	var ids []string
	for i, want := range []string{"miss", "hit"} {
		req := httptest.NewRequest(http.MethodPost, "/api/layout?seed=9", strings.NewReader(experimentsJSON))
		rec := do(t, s, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
		if got := rec.Header().Get(HeaderCache); got != want {
			t.Errorf("request %d: %s = %q, want %q", i, HeaderCache, got, want)
		}
		l, err := plateio.UnmarshalLayout(rec.Body.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, l.ID)
	}
	if ids[0] != ids[1] {
		t.Errorf("seeded layouts should share an ID: %v", ids)
	}
}

func TestAPILayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   perrors.Code
	}{
		{"malformed", "", "not json", http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"unknown field", "", `{"max_well_count": 96, "plates": 2}`, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"bad plate size", "", strings.Replace(experimentsJSON, "96", "100", 1), http.StatusBadRequest, perrors.ErrCodeInvalidPlateSize},
		{"inconsistent", "", `{"max_well_count": 96, "sample_list": [["S1"]], "reagent_list": [], "replicate_count": [1]}`, http.StatusBadRequest, perrors.ErrCodeInconsistentExperiments},
		{"duplicate sample", "", `{"max_well_count": 96, "sample_list": [["S1","S1"]], "reagent_list": [["R1"]], "replicate_count": [1]}`, http.StatusBadRequest, perrors.ErrCodeDuplicateEntry},
		{"zero replicates", "", `{"max_well_count": 96, "sample_list": [["S1"]], "reagent_list": [["R1"]], "replicate_count": [0]}`, http.StatusBadRequest, perrors.ErrCodeInvalidReplicates},
		{"bad seed", "?seed=abc", experimentsJSON, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"bad packer", "?packer=nope", experimentsJSON, http.StatusBadRequest, perrors.ErrCodeInvalidPacker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/layout"+tt.query, strings.NewReader(tt.body))
			rec := do(t, s, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			resp := decodeError(t, rec)
			if resp.Code != string(tt.code) {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
			if resp.RequestID == "" {
				t.Error("error response should carry the request ID")
			}
		})
	}
}

func TestAPIBodyTooLarge(t *testing.T) {
	s := New(pipeline.NewRunner(nil, nil, nil), nil, Options{MaxUploadSize: 32})
	req := httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader(experimentsJSON))
	rec := do(t, s, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestAPIRender(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"", "image/svg+xml", "<svg"},
		{"svg", "image/svg+xml", `class="legend"`},
		{"html", "text/html; charset=utf-8", "<!DOCTYPE html>"},
		{"json", "application/json", `"legend"`},
		{"txt", "text/plain; charset=utf-8", "Plate 1"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			s := newTestServer(t, nil)
			url := "/api/render"
			if tt.format != "" {
				url += "?format=" + tt.format
			}
			rec := do(t, s, httptest.NewRequest(http.MethodPost, url, strings.NewReader(experimentsJSON)))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestAPIRenderInvalidFormat(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/render?format=gif", strings.NewReader(experimentsJSON))
	rec := do(t, s, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != string(perrors.ErrCodeInvalidFormat) {
		t.Errorf("code = %s, want %s", resp.Code, perrors.ErrCodeInvalidFormat)
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"configuration", perrors.New(perrors.ErrCodeDuplicateEntry, "dup"), http.StatusBadRequest},
		{"wrapped configuration", fmt.Errorf("layout: %w", perrors.New(perrors.ErrCodeInvalidPacker, "x")), http.StatusBadRequest},
		{"geometry", perrors.New(perrors.ErrCodeGeometry, "too big"), http.StatusUnprocessableEntity},
		{"unsupported", fmt.Errorf("render png: %w", perrors.New(perrors.ErrCodeUnsupported, "no rsvg")), http.StatusNotImplemented},
		{"too large", perrors.Wrap(perrors.ErrCodeInvalidInput, &http.MaxBytesError{Limit: 1}, "read"), http.StatusRequestEntityTooLarge},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
}

func (h *httpRecorder) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

func TestHTTPHooks(t *testing.T) {
	hooks := &httpRecorder{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t, nil)
	do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	do(t, s, httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader("{")))

	want := []string{"GET /healthz 200", "POST /api/layout 400"}
	if strings.Join(hooks.routes, "|") != strings.Join(want, "|") {
		t.Errorf("hook events = %v, want %v", hooks.routes, want)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	s := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
