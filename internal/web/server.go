// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package web serves the merge engine over HTTP.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"piimerge/internal/detector"
	"piimerge/internal/formatters"
	"piimerge/internal/merge"
	"piimerge/internal/observability"
	"piimerge/internal/parallel"
	"piimerge/internal/source"
	"piimerge/internal/version"

	// Import formatters to register them
	_ "piimerge/internal/formatters/csv"
	_ "piimerge/internal/formatters/json"
	_ "piimerge/internal/formatters/text"
	_ "piimerge/internal/formatters/yaml"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds a request body
const DefaultMaxBodyBytes = 32 << 20

// maxPortAttempts is how many consecutive ports Start tries
const maxPortAttempts = 10

// Options configures a WebServer
type Options struct {
	Port    int
	Workers int

	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer

	// Formatting defaults; requests may override them with query parameters
	Formatter formatters.FormatterOptions

	MaxBodyBytes int64
	Observer     *observability.StandardObserver
}

// WebServer represents the web server instance
type WebServer struct {
	opts      Options
	engine    *merge.Engine
	processor *parallel.ParallelProcessor
	observer  *observability.StandardObserver
	server    *http.Server
	mux       *http.ServeMux
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// PatternInfo describes one catalogue entry
type PatternInfo struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entity_type"`
	Priority     int      `json:"priority"`
	BaseScore    float64  `json:"base_score"`
	ContextWords []string `json:"context_words,omitempty"`
	Validated    bool     `json:"validated"`
}

// NewWebServer creates a new web server instance
func NewWebServer(engine *merge.Engine, opts Options) *WebServer {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Observer == nil {
		opts.Observer = observability.NewNopObserver()
	}
	ws := &WebServer{
		opts:      opts,
		engine:    engine,
		processor: parallel.NewParallelProcessor(engine, opts.Workers, opts.Observer),
		observer:  opts.Observer.Named("web"),
		mux:       http.NewServeMux(),
	}
	ws.setupRoutes()
	// Built up front so that Stop may run before or during Start
	ws.server = ws.createSecureServer(opts.Port)
	return ws
}

// Handler returns the routed handler, for tests and embedding
func (ws *WebServer) Handler() http.Handler {
	return ws.mux
}

// Start listens on the configured port, moving to the next one while ports
// are busy, and serves until Stop. It returns nil at once if Stop was called
// first.
func (ws *WebServer) Start() error {
	var lastError error
	for i := 0; i < maxPortAttempts; i++ {
		port := ws.opts.Port + i
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			lastError = err
			ws.observer.Warn("port not available", zap.Int("port", port), zap.Error(err))
			continue
		}

		ws.observer.Logger().Info("merge API started", zap.Int("port", port))

		if err := ws.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server on port %d failed: %w", port, err)
		}
		return nil
	}

	return fmt.Errorf("could not find an available port in range %d-%d: %w",
		ws.opts.Port, ws.opts.Port+maxPortAttempts-1, lastError)
}

// Stop closes the listener and every open connection. It is safe to call
// from another goroutine than Start.
func (ws *WebServer) Stop() error {
	return ws.server.Close()
}

func (ws *WebServer) setupRoutes() {
	ws.mux.HandleFunc("/health", ws.handleHealth)
	ws.mux.HandleFunc("/merge", ws.handleMerge)
	ws.mux.HandleFunc("/scan", ws.handleScan)
	ws.mux.HandleFunc("/patterns", ws.handlePatterns)
	if ws.opts.Gatherer != nil {
		ws.mux.Handle("/metrics", promhttp.HandlerFor(ws.opts.Gatherer, promhttp.HandlerOpts{}))
	}
}

// createSecureServer creates an HTTP server with security timeouts
func (ws *WebServer) createSecureServer(port int) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: ws.mux,
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		// Timeout for reading entire request
		ReadTimeout: 30 * time.Second,
		// Timeout for writing response
		WriteTimeout: 30 * time.Second,
		// Timeout for idle connections
		IdleTimeout: 60 * time.Second,
	}
}

func (ws *WebServer) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	versionInfo := version.Full()
	ws.writeJSON(responseWriter, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "piimerge",
		"version":   versionInfo["version"],
		"patterns":  ws.engine.Catalogue().Len(),
		"language":  ws.engine.Catalogue().Language(),
		"build_info": map[string]interface{}{
			"version":    versionInfo["version"],
			"commit":     versionInfo["commit"],
			"build_date": versionInfo["buildDate"],
			"go_version": versionInfo["goVersion"],
			"platform":   versionInfo["platform"],
		},
	})
}

// handleMerge merges a batch of documents. The body format follows the
// Content-Type; the output format and filters come from the query string.
func (ws *WebServer) handleMerge(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := request.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	formatter, ok := formatters.Get(format)
	if !ok {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("unknown output format %q, available: %s",
			format, strings.Join(formatters.List(), ", ")), http.StatusBadRequest)
		return
	}
	options, err := ws.formatterOptions(request)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), http.StatusBadRequest)
		return
	}

	request.Body = http.MaxBytesReader(responseWriter, request.Body, ws.opts.MaxBodyBytes)
	docs, err := source.Read(request.Body, inputFormat(request.Header.Get("Content-Type")))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("failed to read documents: %v", err), status)
		return
	}
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = fmt.Sprintf("doc_%d", i)
		}
	}

	results, stats, err := ws.processor.Process(request.Context(), docs)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("merge cancelled: %v", err), http.StatusServiceUnavailable)
		return
	}
	ws.observer.Logger().Debug("merged batch",
		zap.Int("documents", stats.TotalDocuments),
		zap.Int("entities", stats.TotalEntities),
		zap.Int("invalid_spans", stats.InvalidSpans),
		zap.Duration("duration", stats.TotalDuration))

	out := make([]formatters.Document, len(results))
	for i, r := range results {
		out[i] = formatters.Document{ID: r.ID, Entities: r.Entities, Warnings: detector.Warnings(r.Err)}
	}
	body, err := formatter.Format(out, options)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("failed to format results: %v", err), http.StatusInternalServerError)
		return
	}

	responseWriter.Header().Set("Content-Type", contentType(formatter.FileExtension()))
	responseWriter.WriteHeader(http.StatusOK)
	_, _ = responseWriter.Write([]byte(body))
}

// handleScan runs the pattern catalogue alone over a plain-text body
func (ws *WebServer) handleScan(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	request.Body = http.MaxBytesReader(responseWriter, request.Body, ws.opts.MaxBodyBytes)
	docs, err := source.Read(request.Body, source.FormatText)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("failed to read text: %v", err), http.StatusBadRequest)
		return
	}

	entities := ws.engine.Scan(docs[0].Text)
	if entities == nil {
		entities = []detector.Entity{}
	}
	ws.writeJSON(responseWriter, http.StatusOK, map[string]interface{}{"entities": entities})
}

func (ws *WebServer) handlePatterns(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	catalogue := ws.engine.Catalogue()
	infos := make([]PatternInfo, 0, catalogue.Len())
	for _, p := range catalogue.Patterns() {
		infos = append(infos, PatternInfo{
			Name:         p.Name,
			EntityType:   p.EntityType,
			Priority:     p.Priority,
			BaseScore:    p.BaseScore,
			ContextWords: p.ContextWords,
			Validated:    p.Validator != nil,
		})
	}
	ws.writeJSON(responseWriter, http.StatusOK, map[string]interface{}{
		"language": catalogue.Language(),
		"patterns": infos,
	})
}

// formatterOptions applies the confidence, verbose and show_text query
// parameters over the server defaults.
func (ws *WebServer) formatterOptions(request *http.Request) (formatters.FormatterOptions, error) {
	options := ws.opts.Formatter
	options.NoColor = true

	query := request.URL.Query()
	if levels := query.Get("confidence"); levels != "" {
		options.ConfidenceLevel = formatters.ParseConfidenceLevels(levels)
	}
	for name, target := range map[string]*bool{"verbose": &options.Verbose, "show_text": &options.ShowText} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return options, fmt.Errorf("invalid %s value %q", name, raw)
		}
		*target = value
	}
	return options, nil
}

// inputFormat maps a request Content-Type to a source format; JSON is the
// default.
func inputFormat(header string) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return source.FormatJSON
	}
	switch mediaType {
	case "application/x-ndjson", "application/jsonl", "application/x-jsonlines":
		return source.FormatJSONL
	case "application/yaml", "application/x-yaml", "text/yaml":
		return source.FormatYAML
	case "text/plain":
		return source.FormatText
	default:
		return source.FormatJSON
	}
}

func contentType(extension string) string {
	switch extension {
	case ".json":
		return "application/json"
	case ".yaml":
		return "application/yaml"
	case ".csv":
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (ws *WebServer) writeJSON(responseWriter http.ResponseWriter, status int, value interface{}) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)
	if err := json.NewEncoder(responseWriter).Encode(value); err != nil {
		ws.observer.Warn("failed to write response", zap.Error(err))
	}
}

// sendErrorWithStatus sends an error response with a specific HTTP status code
func (ws *WebServer) sendErrorWithStatus(responseWriter http.ResponseWriter, message string, statusCode int) {
	ws.writeJSON(responseWriter, statusCode, ErrorResponse{Success: false, Error: message})
}
