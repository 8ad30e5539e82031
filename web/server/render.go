package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-raycore/pkg/renderer"
	"github.com/df07/go-raycore/pkg/scene"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// TileUpdate is sent once per finished partition
type TileUpdate struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ImageData string `json:"imageData"` // Base64 encoded PNG of just this tile
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int64   `json:"totalSamples"`
	AverageSamples   float64 `json:"averageSamples"`
	MinSamples       int     `json:"minSamples"`
	MaxSamplesUsed   int     `json:"maxSamplesUsed"`
	NonFiniteSamples int64   `json:"nonFiniteSamples"`
	PrimaryRays      int64   `json:"primaryRays"`
	Rays             int64   `json:"rays"`
	ShadowRays       int64   `json:"shadowRays"`
}

// CompleteUpdate is the last event of a render stream
type CompleteUpdate struct {
	JobID     string `json:"jobId"`
	Status    string `json:"status"`
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// eventStream serializes writes of server-sent events to one response
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	return &eventStream{w: w, flusher: flusher}, nil
}

// send writes a single event. data must not contain newlines.
func (es *eventStream) send(event, data string) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	if _, err := fmt.Fprintf(es.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	es.flusher.Flush()
	return nil
}

func (es *eventStream) sendJSON(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return es.send(event, string(data))
}

// handleRender renders a built-in scene and streams every finished tile.
// The render stops when the client disconnects.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sc, err := scene.ByName(req.Scene)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	events, err := newEventStream(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	rend := renderer.NewRenderer(newWebLogger(s.logger, events))
	rend.OnPartition = func(result renderer.PartitionResult) {
		imageData, err := imageToBase64PNG(result.Image)
		if err != nil {
			s.logger.Errorf("encode tile %d: %v", result.Partition.ID, err)
			return
		}
		bounds := result.Partition.Bounds
		if err := events.sendJSON("tile", TileUpdate{
			X:         bounds.Min.X,
			Y:         bounds.Min.Y,
			Width:     bounds.Dx(),
			Height:    bounds.Dy(),
			ImageData: imageData,
			Completed: result.Completed,
			Total:     result.Total,
		}); err != nil {
			rend.Cancel()
		}
	}

	start := time.Now()
	result, err := rend.Render(r.Context(), sc, req.Config)
	if err != nil {
		_ = events.send("error", err.Error())
		return
	}

	_ = events.sendJSON("complete", CompleteUpdate{
		JobID:  result.JobID.String(),
		Status: result.Status.String(),
		Stats: Stats{
			TotalPixels:      result.Stats.TotalPixels,
			TotalSamples:     int64(result.Stats.TotalSamples),
			AverageSamples:   result.Stats.AverageSamples,
			MinSamples:       result.Stats.MinSamples,
			MaxSamplesUsed:   result.Stats.MaxSamplesUsed,
			NonFiniteSamples: int64(result.Stats.NonFiniteSamples),
			PrimaryRays:      int64(result.Stats.PrimaryRays),
			Rays:             int64(result.Stats.Rays),
			ShadowRays:       int64(result.Stats.ShadowRays),
		},
		ElapsedMs: time.Since(start).Milliseconds(),
	})
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
