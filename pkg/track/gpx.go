package track

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tkrajina/gpxgo/gpx"
)

// ErrNoGeometry is returned for GPX documents without track, route or
// waypoint coordinates.
var ErrNoGeometry = errors.New("track has no geometry")

// LatLng is a marker position, latitude first.
type LatLng [2]float64

// Bounds is the south-west and north-east corners of a track.
type Bounds [2]LatLng

// Geometry is a parsed track. Coordinates are GeoJSON ordered: longitude
// first.
type Geometry struct {
	Resource     string       `json:"resource"`
	Name         string       `json:"name"`
	Coordinates  [][2]float64 `json:"coordinates"`
	LengthMeters float64      `json:"length_meters"`
	Bounds       Bounds       `json:"bounds"`
}

// Start returns the first coordinate as a marker position.
func (g Geometry) Start() LatLng {
	return reverse(g.Coordinates[0])
}

// End returns the last coordinate as a marker position.
func (g Geometry) End() LatLng {
	return reverse(g.Coordinates[len(g.Coordinates)-1])
}

// Miles is the 2D length in statute miles.
func (g Geometry) Miles() float64 {
	return g.LengthMeters / 1609.344
}

func reverse(c [2]float64) LatLng {
	return LatLng{c[1], c[0]}
}

// Parse reads a GPX document. Track segments are concatenated in order;
// documents without tracks fall back to their routes, then waypoints.
func Parse(r io.Reader) (Geometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Geometry{}, fmt.Errorf("reading gpx: %w", err)
	}
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return Geometry{}, fmt.Errorf("parsing gpx: %w", err)
	}

	var coords [][2]float64
	name := doc.Name
	for _, trk := range doc.Tracks {
		if name == "" {
			name = trk.Name
		}
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				coords = append(coords, [2]float64{p.Longitude, p.Latitude})
			}
		}
	}
	if len(coords) == 0 {
		for _, rte := range doc.Routes {
			if name == "" {
				name = rte.Name
			}
			for _, p := range rte.Points {
				coords = append(coords, [2]float64{p.Longitude, p.Latitude})
			}
		}
	}
	if len(coords) == 0 {
		for _, p := range doc.Waypoints {
			coords = append(coords, [2]float64{p.Longitude, p.Latitude})
		}
	}
	if len(coords) == 0 {
		return Geometry{}, ErrNoGeometry
	}

	return Geometry{
		Name:         name,
		Coordinates:  coords,
		LengthMeters: doc.Length2D(),
		Bounds:       boundsOf(coords),
	}, nil
}

func boundsOf(coords [][2]float64) Bounds {
	b := Bounds{reverse(coords[0]), reverse(coords[0])}
	for _, c := range coords[1:] {
		lat, lon := c[1], c[0]
		b[0][0] = min(b[0][0], lat)
		b[0][1] = min(b[0][1], lon)
		b[1][0] = max(b[1][0], lat)
		b[1][1] = max(b[1][1], lon)
	}
	return b
}

// Opener fetches the GPX behind a track resource.
type Opener interface {
	OpenTrack(ctx context.Context, resource string) (io.ReadCloser, error)
}

// Loader turns track resources into geometry.
type Loader struct {
	opener Opener
}

func NewLoader(opener Opener) *Loader {
	return &Loader{opener: opener}
}

func (l *Loader) Load(ctx context.Context, resource string) (Geometry, error) {
	rc, err := l.opener.OpenTrack(ctx, resource)
	if err != nil {
		return Geometry{}, err
	}
	defer rc.Close()

	g, err := Parse(rc)
	if err != nil {
		return Geometry{}, fmt.Errorf("%s: %w", resource, err)
	}
	g.Resource = resource
	return g, nil
}
