// Package mapserver is the node's HTTP surface: it ingests submap list
// notifications, serves the latest published grid, and streams publishes to
// SSE subscribers. It implements occupancy.GridSink.
package mapserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/gridstore"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/httputil"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/monitor"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/version"
)

type Server struct {
	node *occupancy.Node

	store    *gridstore.Store  // optional, enables /debug db routes
	recorder *monitor.Recorder // optional, enables /debug/render-plot

	mu     sync.RWMutex
	latest *occupancy.OccupancyGrid

	subMu       sync.Mutex
	subscribers map[string]chan *occupancy.OccupancyGrid
}

func NewServer(node *occupancy.Node) *Server {
	return &Server{
		node:        node,
		subscribers: make(map[string]chan *occupancy.OccupancyGrid),
	}
}

// SetStore enables the grid database debug routes.
func (s *Server) SetStore(store *gridstore.Store) { s.store = store }

// SetRecorder enables the render timing debug routes.
func (s *Server) SetRecorder(r *monitor.Recorder) { s.recorder = r }

// PublishGrid stores the grid as the latest and fans it out to SSE
// subscribers. Slow subscribers drop grids rather than block the node.
func (s *Server) PublishGrid(grid *occupancy.OccupancyGrid) {
	s.mu.Lock()
	s.latest = grid
	s.mu.Unlock()

	s.subMu.Lock()
	for _, ch := range s.subscribers {
		select {
		case ch <- grid:
		default:
		}
	}
	s.subMu.Unlock()
}

// Latest returns the most recently published grid, or nil.
func (s *Server) Latest() *occupancy.OccupancyGrid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Subscribe creates a channel receiving every subsequent publish.
func (s *Server) Subscribe() (string, chan *occupancy.OccupancyGrid) {
	id := uuid.New().String()
	ch := make(chan *occupancy.OccupancyGrid, 1)
	s.subMu.Lock()
	s.subscribers[id] = ch
	s.subMu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Server) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}

// ServeMux builds the HTTP routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/submap_list", s.handleSubmapList)
	mux.HandleFunc("/map", s.handleMap)
	mux.HandleFunc("/map/stream", s.handleMapStream)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/version", s.handleVersion)
	mux.Handle("/metrics", promhttp.Handler())
	if s.recorder != nil {
		mux.HandleFunc("/debug/grid", monitor.GridHeatmapHandler(s.Latest))
		mux.HandleFunc("/debug/render-plot", s.recorder.PlotHandler())
	}
	if s.store != nil {
		s.store.AttachAdminRoutes(mux)
	}
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Occupancy Grid Server!"))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ok submaps=%d\n", s.node.Cache().Len())
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

// submapListPayload mirrors the SubmapList wire message.
type submapListPayload struct {
	Header  headerPayload        `json:"header"`
	Submaps []submapEntryPayload `json:"submaps"`
}

type headerPayload struct {
	FrameID string    `json:"frame_id"`
	Stamp   time.Time `json:"stamp"`
}

type submapEntryPayload struct {
	TrajectoryID  int              `json:"trajectory_id"`
	SubmapIndex   int              `json:"submap_index"`
	Pose          transform.Rigid3 `json:"pose"`
	SubmapVersion int              `json:"submap_version"`
}

func (s *Server) handleSubmapList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var payload submapListPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("failed to decode submap list: %v", err))
		return
	}

	list := occupancy.SubmapList{
		FrameID: payload.Header.FrameID,
		Stamp:   payload.Header.Stamp,
		Submaps: make([]occupancy.SubmapEntry, 0, len(payload.Submaps)),
	}
	for _, e := range payload.Submaps {
		list.Submaps = append(list.Submaps, occupancy.SubmapEntry{
			ID:      occupancy.SubmapID{TrajectoryID: e.TrajectoryID, SubmapIndex: e.SubmapIndex},
			Pose:    e.Pose,
			Version: e.SubmapVersion,
		})
	}

	// Reconciliation (including any texture fetches) completes before the
	// request is acknowledged.
	s.node.HandleSubmapList(list)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	grid := s.Latest()
	if grid == nil {
		httputil.NotFound(w, "no grid published yet")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, grid)
}

func (s *Server) handleMapStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

	id, ch := s.Subscribe()
	defer s.Unsubscribe(id)

	// Send initial ping to establish connection
	w.Write([]byte(": ping\n\n"))
	w.(http.Flusher).Flush()

	for {
		select {
		case grid, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(grid)
			if err != nil {
				log.Printf("[MapServer] failed to encode grid for stream: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			w.(http.Flusher).Flush()
		case <-r.Context().Done():
			return
		}
	}
}
