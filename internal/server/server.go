// Package server exposes projections and whole-configuration forecasts over
// HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/vehicle-tco/internal/config"
	"github.com/iwvelando/vehicle-tco/internal/forecast"
	"github.com/iwvelando/vehicle-tco/internal/optimizer"
	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/output"
	"github.com/iwvelando/vehicle-tco/pkg/presets"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
	"github.com/iwvelando/vehicle-tco/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options configures NewHandler. Zero values select defaults: the built-in
// preset catalog, no cache, and no rate limiting.
type Options struct {
	MaxUploadSize int64
	Version       string
	Catalog       *presets.Catalog
	Cache         Cache
	Limiter       *RateLimiter
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	catalog       *presets.Catalog
	cache         Cache
}

type forecastOptions struct {
	Optimize bool
	Format   string
}

// NewHandler constructs the HTTP handler that serves the projection and
// forecast API.
func NewHandler(logger *zap.Logger, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	catalog := opts.Catalog
	if catalog == nil {
		var err error
		catalog, err = presets.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		catalog:       catalog,
		cache:         opts.Cache,
	}

	mux := http.NewServeMux()

	// Single projection from parameters or a preset reference
	mux.HandleFunc("/api/projection", h.handleProjection)

	// Whole-configuration forecast (file upload)
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Config serialization endpoint for downloads
	mux.HandleFunc("/api/export", h.handleConfigExport)

	mux.HandleFunc("/api/presets", h.handlePresets)
	mux.HandleFunc("/api/version", h.handleVersion)

	var root http.Handler = mux
	if opts.Limiter != nil {
		root = h.RateLimitMiddleware(opts.Limiter, root)
	}
	root = h.accessLogMiddleware(root)
	return requestIDMiddleware(root), nil
}

type projectionRequest struct {
	Parameters *projection.Parameters `json:"parameters,omitempty"`
	Vehicle    *config.VehicleRef     `json:"vehicle,omitempty"`
	Values     *config.Values         `json:"values,omitempty"`
}

type projectionResponse struct {
	output.ScenarioReport
	Cached    bool   `json:"cached"`
	RequestID string `json:"requestId,omitempty"`
}

type forecastResponse struct {
	output.Report
	CSV        string   `json:"csv"`
	Warnings   []string `json:"warnings,omitempty"`
	Duration   string   `json:"duration"`
	ConfigYAML string   `json:"configYaml,omitempty"`
}

type presetsResponse struct {
	Brands                   []brandPresets     `json:"brands"`
	FuelPrices               map[string]float64 `json:"fuelPrices"`
	DefaultDepreciationCurve []float64          `json:"defaultDepreciationCurve"`
}

type brandPresets struct {
	Brand  string            `json:"brand"`
	Models []presets.Vehicle `json:"models"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var req projectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	params, vehicle, err := h.requestParameters(req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, presets.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}

	warnings := validation.ValidateParameters(params)
	result, cached := h.project(r, params)

	report := output.NewReport([]forecast.Forecast{{
		Name:       "custom",
		Vehicle:    vehicle,
		Projection: result,
		Warnings:   warnings,
	}}, constants.DefaultCurrencySymbol)

	h.writeJSON(w, http.StatusOK, projectionResponse{
		ScenarioReport: report.Scenarios[0],
		Cached:         cached,
		RequestID:      RequestIDFromContext(r.Context()),
	})
}

// requestParameters builds parameters from either explicit engine
// parameters or a preset reference with overriding values. It also returns
// the resolved vehicle name, if any.
func (h *handler) requestParameters(req projectionRequest) (projection.Parameters, string, error) {
	if req.Parameters != nil {
		if req.Vehicle != nil || req.Values != nil {
			return projection.Parameters{}, "", fmt.Errorf("parameters cannot be combined with vehicle or values")
		}
		return *req.Parameters, "", nil
	}
	if req.Vehicle == nil && req.Values == nil {
		return projection.Parameters{}, "", fmt.Errorf("request must include parameters, vehicle, or values")
	}

	scenario := config.Scenario{Name: "custom", Active: true, Vehicle: req.Vehicle}
	if req.Values != nil {
		scenario.Values = *req.Values
	}
	return (&config.Configuration{}).ScenarioParameters(scenario, h.catalog)
}

// project returns the projection for params, from the cache when possible.
// Cache failures are logged and the projection is computed instead.
func (h *handler) project(r *http.Request, params projection.Parameters) (projection.Projection, bool) {
	const op = "server.project"
	if h.cache == nil {
		return projection.Project(params), false
	}

	ctx := r.Context()
	requestID := RequestIDFromContext(ctx)
	key, err := CacheKey(params)
	if err != nil {
		h.logger.Warn("failed to derive cache key",
			zap.String("op", op),
			zap.String("requestId", requestID),
			zap.Error(err),
		)
		return projection.Project(params), false
	}

	if data, ok, err := h.cache.Get(ctx, key); err != nil {
		h.logger.Warn("cache lookup failed",
			zap.String("op", op),
			zap.String("requestId", requestID),
			zap.Error(err),
		)
	} else if ok {
		var cached projection.Projection
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, true
		}
		h.logger.Warn("discarding undecodable cache entry",
			zap.String("op", op),
			zap.String("requestId", requestID),
			zap.String("key", key),
		)
	}

	result := projection.Project(params)
	data, err := json.Marshal(result)
	if err == nil {
		err = h.cache.Set(ctx, key, data)
	}
	if err != nil {
		h.logger.Warn("failed to cache projection",
			zap.String("op", op),
			zap.String("requestId", requestID),
			zap.Error(err),
		)
	}
	return result, false
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecast"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	opts := forecastOptions{
		Optimize: coerceBool(r.FormValue("optimize")),
		Format:   strings.TrimSpace(r.FormValue("format")),
	}
	if opts.Format == "" {
		opts.Format = constants.OutputFormatJSON
	}
	if err := validation.ValidateOutputFormat(opts.Format); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	h.runForecast(w, r, buf.Bytes(), start, opts)
}

func (h *handler) runForecast(w http.ResponseWriter, r *http.Request, configBytes []byte, start time.Time, opts forecastOptions) {
	const op = "server.runForecast"
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	if cfg.Presets.File != "" {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "presets.file is not allowed in uploaded configurations", op)
		return
	}

	warnings := cfg.ValidateConfiguration()

	var optimizationResult *optimizer.Result
	if opts.Optimize {
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to initialize optimizer: %v", err), op)
			return
		}

		optimizationResult, err = runner.Run()
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("optimizer execution failed: %v", err), op)
			return
		}
	}

	results, err := forecast.GetForecast(h.logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}

	if optimizationResult != nil && !optimizationResult.Empty() {
		optimizationResult.Apply(results)

		updatedBytes, err := yaml.Marshal(cfg)
		if err != nil {
			h.logger.Warn("failed to marshal optimized configuration",
				zap.String("op", op),
				zap.Error(err),
			)
		} else {
			configBytes = updatedBytes
		}
	}

	symbol := cfg.CurrencySymbol()
	elapsed := time.Since(start)
	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("requestId", RequestIDFromContext(r.Context())),
		zap.Int("scenarios", len(results)),
		zap.String("format", opts.Format),
		zap.Duration("duration", elapsed),
	)

	switch opts.Format {
	case constants.OutputFormatPretty:
		h.writeReport(w, r, "text/plain; charset=utf-8", func(out io.Writer) error {
			return output.PrettyFormat(out, results, symbol)
		})
		return
	case constants.OutputFormatCSV:
		h.writeReport(w, r, "text/csv; charset=utf-8", func(out io.Writer) error {
			return output.CsvFormat(out, results)
		})
		return
	case constants.OutputFormatHTML:
		h.writeReport(w, r, "text/html; charset=utf-8", func(out io.Writer) error {
			return output.HTMLFormat(out, results, symbol)
		})
		return
	}

	csvData, err := output.CsvString(results)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, forecastResponse{
		Report:     output.NewReport(results, symbol),
		CSV:        csvData,
		Warnings:   warnings,
		Duration:   elapsed.String(),
		ConfigYAML: string(configBytes),
	})
}

// writeReport renders into a buffer first so a rendering error can still be
// reported with an error status.
func (h *handler) writeReport(w http.ResponseWriter, r *http.Request, contentType string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render report: %v", err), "server.writeReport")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write report", zap.String("op", "server.writeReport"), zap.Error(err))
	}
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	response := presetsResponse{
		FuelPrices:               h.catalog.FuelPrices(),
		DefaultDepreciationCurve: constants.DefaultDepreciationCurve,
	}
	for _, brand := range h.catalog.Brands() {
		models, err := h.catalog.Models(brand)
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusInternalServerError, err.Error(), "server.handlePresets")
			return
		}
		entry := brandPresets{Brand: brand}
		for _, model := range models {
			vehicle, err := h.catalog.Lookup(brand, model)
			if err != nil {
				h.respondErrorWithOp(w, r, http.StatusInternalServerError, err.Error(), "server.handlePresets")
				return
			}
			entry.Models = append(entry.Models, vehicle)
		}
		response.Brands = append(response.Brands, entry)
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// marshalOrderedConfigYAML writes the well-known sections in file order and
// any other keys after them alphabetically.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "presets", "common", "scenarios"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestId", RequestIDFromContext(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes into a buffer first so an encoding error becomes a 500
// instead of an empty success response.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func coerceBool(value string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && parsed
}
