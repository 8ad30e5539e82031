package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/renderer"
	"github.com/df07/go-raycore/pkg/scene"
)

// Limits applied to render requests
const (
	minDimension = 16
	maxDimension = 2000
	maxSamples   = 1024
	maxDepth     = 64
)

// Server streams renders of the built-in scenes over server-sent events
type Server struct {
	port    int
	threads int
	logger  core.Logger
}

// NewServer creates a new web server. threads <= 0 uses every logical CPU.
func NewServer(port, threads int, logger core.Logger) *Server {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	if threads <= 0 {
		threads = renderer.DefaultThreads()
	}
	return &Server{port: port, threads: threads, logger: logger}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/render", s.handleRender)
	return mux
}

// Start serves until the listener fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Infof("starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SceneEntry describes a built-in scene to the client
type SceneEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// handleScenes lists the built-in scenes with their native resolution
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	infos := scene.Builtins()
	entries := make([]SceneEntry, 0, len(infos))
	for _, info := range infos {
		sc, err := scene.ByName(info.ID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		entries = append(entries, SceneEntry{
			ID:          info.ID,
			DisplayName: info.DisplayName,
			Description: info.Description,
			Width:       sc.Camera().Width(),
			Height:      sc.Camera().Height(),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// RenderRequest holds the parsed query parameters of a render
type RenderRequest struct {
	Scene  string
	Config renderer.Config
}

// parseRenderRequest reads the query into a validated render config
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene"), Config: renderer.DefaultConfig()}
	if req.Scene == "" {
		req.Scene = "cornell"
	}
	cfg := &req.Config
	cfg.Threads = s.threads

	var err error
	if name := values.Get("integrator"); name != "" {
		if cfg.Integrator, err = renderer.ParseIntegrator(name); err != nil {
			return nil, err
		}
	}
	if name := values.Get("partition"); name != "" {
		if cfg.Partition, err = renderer.ParsePartition(name); err != nil {
			return nil, err
		}
	}
	if cfg.Width, err = parseIntParam(values, "width", 400, minDimension, maxDimension); err != nil {
		return nil, err
	}
	if cfg.Height, err = parseIntParam(values, "height", 400, minDimension, maxDimension); err != nil {
		return nil, err
	}
	if cfg.SamplesPerPixel, err = parseIntParam(values, "spp", cfg.SamplesPerPixel, 1, maxSamples); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = parseIntParam(values, "depth", cfg.MaxDepth, 1, maxDepth); err != nil {
		return nil, err
	}
	if cfg.TileSize, err = parseIntParam(values, "tile", cfg.TileSize, 1, maxDimension); err != nil {
		return nil, err
	}
	if cfg.AdaptiveDepth, err = parseIntParam(values, "adaptive", 0, 0, 8); err != nil {
		return nil, err
	}
	if cfg.AdaptiveThreshold, err = parseFloatParam(values, "threshold", cfg.AdaptiveThreshold, 0, 1); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", 0, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	cfg.Seed = uint64(seed)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
