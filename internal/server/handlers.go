package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/shapegrid/pkg/buildinfo"
	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/observability"
	"github.com/matzehuels/shapegrid/pkg/pipeline"
	"github.com/matzehuels/shapegrid/pkg/render/tree"
	"github.com/matzehuels/shapegrid/pkg/scene"
)

// Response headers describing a synthesis.
const (
	headerCache     = "X-Shapegrid-Cache"
	headerSceneHash = "X-Shapegrid-Scene-Hash"
	headerRows      = "X-Shapegrid-Rows"
	headerColumns   = "X-Shapegrid-Columns"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// codeNoTable marks a well-formed scene whose shapes do not form a table.
const codeNoTable = "NO_TABLE"

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	opts, err := optionsFromQuery(q.Get, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sc, err := s.decodeScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), sc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(headerSceneHash, res.SceneHash)
	w.Header().Set(headerCache, cacheStatus(res.CacheInfo.RenderHit))
	if !res.Found {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error: "shapes do not form a table",
			Code:  codeNoTable,
		})
		return
	}

	w.Header().Set(headerRows, strconv.Itoa(res.Stats.Rows))
	w.Header().Set(headerColumns, strconv.Itoa(res.Stats.Columns))
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	switch format {
	case "", "dot", "svg":
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be dot or svg)", format))
		return
	}
	detailed, err := boolParam(q.Get, "detailed")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sc, err := s.decodeScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	root, err := sc.Tree()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dot := tree.ToDOT(root, tree.Options{Detailed: detailed, Highlight: q["highlight"]})
	if format == "svg" {
		svg, err := tree.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[pipeline.FormatSVG])
		_, _ = w.Write(svg)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) decodeScene(w http.ResponseWriter, r *http.Request) (*scene.Scene, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	sc, err := scene.Decode(body, scene.FormatJSON)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errTooLarge{limit: tooLarge.Limit}
		}
		return nil, err
	}
	return sc, nil
}

// optionsFromQuery maps query parameters onto pipeline options. Defaults
// are left to the runner so it can attach its logger.
func optionsFromQuery(get func(string) string, format string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Formats:    []string{format},
		Container:  get("container"),
		Candidates: get("candidates"),
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}

	for name, dst := range map[string]*float64{"tolerance": &opts.Tolerance, "scale": &opts.Scale} {
		raw := get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, raw)
		}
		*dst = v
	}

	flags := map[string]*bool{
		"labels":     &opts.Labels,
		"grid_lines": &opts.GridLines,
		"synthetic":  &opts.Synthetic,
		"borders":    &opts.Borders,
		"refresh":    &opts.Refresh,
	}
	for name, dst := range flags {
		v, err := boolParam(get, name)
		if err != nil {
			return opts, err
		}
		*dst = v
	}
	return opts, nil
}

func boolParam(get func(string) string, name string) (bool, error) {
	raw := get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, raw)
	}
	return v, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

type errTooLarge struct{ limit int64 }

func (e errTooLarge) Error() string {
	return "request body exceeds " + strconv.FormatInt(e.limit, 10) + " bytes"
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var tl errTooLarge
	switch {
	case stderrors.As(err, &tl):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidScene, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeDisjointTrees:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeBackend:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		body.Error = "internal error"
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// logRequests logs each request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, d)

		logf := s.logger.Info
		if status >= 500 {
			logf = s.logger.Warn
		}
		logf("request",
			"method", r.Method,
			"path", strings.TrimSuffix(r.URL.Path, "/"),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
