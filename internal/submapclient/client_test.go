package submapclient

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
)

func gzipCells(intensity, alpha []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for i := range intensity {
		gz.Write([]byte{intensity[i], alpha[i]})
	}
	gz.Close()
	return buf.Bytes()
}

func TestFetchTextures(t *testing.T) {
	intensity := []byte{255, 0, 128, 1}
	alpha := []byte{255, 0, 255, 255}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/submap_query" {
			t.Errorf("path = %q", got)
		}
		if r.URL.Query().Get("trajectory_id") != "1" || r.URL.Query().Get("submap_index") != "7" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(queryResponse{
			Status:  "ok",
			Version: 3,
			Textures: []queryTexture{{
				Cells:      gzipCells(intensity, alpha),
				Width:      2,
				Height:     2,
				SlicePose:  transform.Identity(),
				Resolution: 0.05,
				Version:    3,
			}},
		})
	}))
	defer srv.Close()

	set, err := New(srv.URL, time.Second).FetchTextures(occupancy.SubmapID{TrajectoryID: 1, SubmapIndex: 7})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if set.Version != 3 || len(set.Textures) != 1 {
		t.Fatalf("unexpected set: version=%d textures=%d", set.Version, len(set.Textures))
	}
	tex := set.Textures[0]
	if tex.Width != 2 || tex.Height != 2 || tex.Resolution != 0.05 {
		t.Fatalf("unexpected texture: %+v", tex)
	}
	// Cell 1 had intensity 0 and alpha 0: unobserved.
	if tex.Pixels.Pix[1*4+1] != 0 {
		t.Error("cell 1 should be unobserved")
	}
	if tex.Pixels.Pix[0*4+1] == 0 || tex.Pixels.Pix[3*4+0] != 1 {
		t.Error("observed cells not decoded correctly")
	}
}

func TestFetchTexturesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchTextures(occupancy.SubmapID{})
	if !errors.Is(err, occupancy.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchTexturesUnavailableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(queryResponse{Status: "unavailable"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchTextures(occupancy.SubmapID{})
	if !errors.Is(err, occupancy.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchTexturesBadCellBlob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(queryResponse{
			Status:   "ok",
			Version:  1,
			Textures: []queryTexture{{Cells: []byte("not gzip"), Width: 2, Height: 2}},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchTextures(occupancy.SubmapID{})
	if err == nil || errors.Is(err, occupancy.ErrUnavailable) {
		t.Fatalf("expected a decode error, got %v", err)
	}
}

func TestFetchTexturesCellCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(queryResponse{
			Status:   "ok",
			Version:  1,
			Textures: []queryTexture{{Cells: gzipCells([]byte{1}, []byte{1}), Width: 2, Height: 2}},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchTextures(occupancy.SubmapID{})
	if err == nil {
		t.Fatal("expected an error for truncated cell data")
	}
}

func TestSyntheticFetcherContract(t *testing.T) {
	f := NewSyntheticFetcher()
	set, err := f.FetchTextures(occupancy.SubmapID{TrajectoryID: 0, SubmapIndex: 0})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(set.Textures) == 0 {
		t.Fatal("synthetic fetcher must honour the non-empty texture contract")
	}
	list := f.SyntheticSubmapList("map", 3)
	if len(list.Submaps) != 3 || list.FrameID != "map" {
		t.Fatalf("unexpected list: %+v", list)
	}
}
