package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/shapegrid/pkg/cache"
	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/observability"
	"github.com/matzehuels/shapegrid/pkg/pipeline"
)

const layoutScene = `{
  "name": "layout",
  "root": {
    "name": "page",
    "kind": "group",
    "width": 100,
    "height": 100,
    "children": [
      {"name": "header", "width": 100, "height": 20, "fill": "#336699"},
      {"name": "left", "y": 20, "width": 50, "height": 80},
      {"name": "right", "x": 50, "y": 20, "width": 50, "height": 40}
    ]
  }
}`

const emptyScene = `{"root": {"name": "page", "width": 100, "height": 100}}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(New(pipeline.NewRunner(c, nil, nil)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" || body["version"] == "" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestSynthesizeJSON(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/synthesize", layoutScene)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get(headerRows) != "3" || resp.Header.Get(headerColumns) != "2" {
		t.Errorf("size headers = %s x %s", resp.Header.Get(headerRows), resp.Header.Get(headerColumns))
	}
	if resp.Header.Get(headerCache) != "miss" {
		t.Errorf("first request cache = %q", resp.Header.Get(headerCache))
	}

	var doc struct {
		Name  string `json:"name"`
		Cells []struct {
			Source    string `json:"source"`
			Synthetic bool   `json:"synthetic"`
		} `json:"cells"`
	}
	if err := json.Unmarshal(readBody(t, resp), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Name != "layout" || len(doc.Cells) != 4 || doc.Cells[0].Source != "header" || !doc.Cells[3].Synthetic {
		t.Errorf("doc = %+v", doc)
	}

	again := post(t, srv, "/v1/synthesize", layoutScene)
	if again.Header.Get(headerCache) != "hit" {
		t.Errorf("second request cache = %q", again.Header.Get(headerCache))
	}
	if again.Header.Get(headerSceneHash) != resp.Header.Get(headerSceneHash) {
		t.Error("scene hash should be stable across requests")
	}
}

func TestSynthesizeSVG(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/synthesize?format=svg&labels=true&synthetic=1", layoutScene)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := string(readBody(t, resp))
	if !strings.HasPrefix(body, "<svg") || !strings.Contains(body, "<text") || !strings.Contains(body, "synthetic") {
		t.Errorf("unexpected svg: %.120s", body)
	}
}

func TestSynthesizeXLSX(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/synthesize?format=xlsx", layoutScene)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	f, err := excelize.OpenReader(bytes.NewReader(readBody(t, resp)))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("layout", "A1"); v != "header" {
		t.Errorf("A1 = %q, want header", v)
	}
}

func TestSynthesizeNoTable(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/synthesize", emptyScene)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body errorBody
	if err := json.Unmarshal(readBody(t, resp), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != codeNoTable {
		t.Errorf("code = %q", body.Code)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"bad format", "/v1/synthesize?format=gif", layoutScene, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad tolerance", "/v1/synthesize?tolerance=abc", layoutScene, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"negative tolerance", "/v1/synthesize?tolerance=-1", layoutScene, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad flag", "/v1/synthesize?labels=maybe", layoutScene, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed body", "/v1/synthesize", "{", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown field", "/v1/synthesize", `{"root": {"width": 1, "height": 1}, "colour": "red"}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"missing container", "/v1/synthesize?container=nope", layoutScene, http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body errorBody
			if err := json.Unmarshal(readBody(t, resp), &body); err != nil {
				t.Fatal(err)
			}
			if body.Code != string(tt.code) || body.Error == "" {
				t.Errorf("body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(New(nil, WithMaxBodyBytes(16)).Handler())
	defer srv.Close()

	resp := post(t, srv, "/v1/synthesize", layoutScene)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestTreeDOT(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/tree?detailed=true&highlight=header", layoutScene)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	dot := string(readBody(t, resp))
	if !strings.HasPrefix(dot, "digraph") || strings.Count(dot, "->") != 3 || !strings.Contains(dot, "color=red") {
		t.Errorf("unexpected dot:\n%s", dot)
	}
}

func TestTreeBadFormat(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/tree?format=png", layoutScene)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidScene, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeDisjointTrees, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New(errors.ErrCodeBackend, "x"), http.StatusBadGateway},
		{errors.New(errors.ErrCodeGridInvariant, "x"), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errTooLarge{limit: 1}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type httpEvents struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
	errs     int
}

func (h *httpEvents) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func (h *httpEvents) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs++
}

func TestHTTPHooks(t *testing.T) {
	ev := &httpEvents{}
	observability.SetHTTPHooks(ev)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t)
	post(t, srv, "/v1/synthesize", layoutScene)
	post(t, srv, "/v1/synthesize?format=gif", layoutScene)

	ev.mu.Lock()
	defer ev.mu.Unlock()
	if len(ev.statuses) != 2 || ev.statuses[0] != 200 || ev.statuses[1] != 400 || ev.errs != 1 {
		t.Errorf("statuses = %v, errors = %d", ev.statuses, ev.errs)
	}
}

func TestServeShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(nil).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
