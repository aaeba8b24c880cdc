// Package submapclient fetches submap textures from the map builder's
// submap-query HTTP endpoint. It implements occupancy.TextureFetcher.
package submapclient

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/paint"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
)

// queryResponse mirrors the submap query wire format. Cells is the gzip of
// interleaved (intensity, alpha) byte pairs, row-major from the top row.
type queryResponse struct {
	Status   string         `json:"status"`
	Version  int            `json:"version"`
	Textures []queryTexture `json:"textures"`
}

type queryTexture struct {
	Cells      []byte           `json:"cells"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	SlicePose  transform.Rigid3 `json:"slice_pose"`
	Resolution float64          `json:"resolution"`
	Version    int              `json:"version"`
}

// Client queries one map builder endpoint. Timeouts are the client's concern;
// the cache imposes none of its own.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchTextures retrieves the texture set for one submap id. A 404 or an
// explicit "unavailable" status maps to occupancy.ErrUnavailable; transport
// and decode failures are returned as errors. Both are recoverable for the
// caller.
func (c *Client) FetchTextures(id occupancy.SubmapID) (*occupancy.TextureSet, error) {
	q := url.Values{}
	q.Set("trajectory_id", fmt.Sprint(id.TrajectoryID))
	q.Set("submap_index", fmt.Sprint(id.SubmapIndex))
	resp, err := c.http.Get(c.baseURL + "/submap_query?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("submap query %v: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, occupancy.ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("submap query %v: unexpected status %s", id, resp.Status)
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("submap query %v: decode: %w", id, err)
	}
	if payload.Status == "unavailable" {
		return nil, occupancy.ErrUnavailable
	}

	set := &occupancy.TextureSet{Version: payload.Version}
	for _, tex := range payload.Textures {
		intensity, alpha, err := unpackTextureCells(tex.Cells, tex.Width, tex.Height)
		if err != nil {
			return nil, fmt.Errorf("submap query %v: %w", id, err)
		}
		set.Textures = append(set.Textures, occupancy.SliceTexture{
			Pixels:     paint.DrawTexture(intensity, alpha, tex.Width, tex.Height),
			Width:      tex.Width,
			Height:     tex.Height,
			SlicePose:  tex.SlicePose,
			Resolution: tex.Resolution,
			Version:    tex.Version,
		})
	}
	return set, nil
}

// unpackTextureCells decompresses the cell blob and splits the interleaved
// intensity/alpha pairs.
func unpackTextureCells(cells []byte, width, height int) (intensity, alpha []byte, err error) {
	gz, err := gzip.NewReader(bytes.NewReader(cells))
	if err != nil {
		return nil, nil, fmt.Errorf("texture cells: %w", err)
	}
	defer gz.Close()
	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, nil, fmt.Errorf("texture cells: %w", err)
	}
	if len(raw) != 2*width*height {
		return nil, nil, fmt.Errorf("texture cells: got %d bytes, want %d", len(raw), 2*width*height)
	}
	intensity = make([]byte, width*height)
	alpha = make([]byte, width*height)
	for i := range intensity {
		intensity[i] = raw[2*i]
		alpha[i] = raw[2*i+1]
	}
	return intensity, alpha, nil
}
