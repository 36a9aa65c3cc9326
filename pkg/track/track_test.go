package track

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rubiojr/triplog/pkg/journal"
)

// gpxDoc builds a one-segment GPX track from lat,lon pairs.
func gpxDoc(name string, points ...[2]float64) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">`)
	fmt.Fprintf(&b, "<trk><name>%s</name><trkseg>", name)
	for _, p := range points {
		fmt.Fprintf(&b, `<trkpt lat="%f" lon="%f"></trkpt>`, p[0], p[1])
	}
	b.WriteString("</trkseg></trk></gpx>")
	return b.String()
}

type fakeOpener struct {
	docs map[string]string
	// gates block a resource until closed.
	gates map[string]chan struct{}
}

func (f *fakeOpener) OpenTrack(ctx context.Context, resource string) (io.ReadCloser, error) {
	if gate, ok := f.gates[resource]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	doc, ok := f.docs[resource]
	if !ok {
		return nil, fmt.Errorf("%s: not found", resource)
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

func TestParse(t *testing.T) {
	g, err := Parse(strings.NewReader(gpxDoc("Denver to Fruita",
		[2]float64{39.74, -104.99},
		[2]float64{39.50, -106.00},
		[2]float64{39.16, -108.73},
	)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if g.Name != "Denver to Fruita" {
		t.Errorf("Name = %q", g.Name)
	}
	if len(g.Coordinates) != 3 {
		t.Fatalf("got %d coordinates", len(g.Coordinates))
	}
	if g.Coordinates[0] != [2]float64{-104.99, 39.74} {
		t.Errorf("coordinates should be lon,lat: %v", g.Coordinates[0])
	}
	if g.End() != (LatLng{39.16, -108.73}) {
		t.Errorf("End() = %v, want lat,lon", g.End())
	}
	if g.Start() != (LatLng{39.74, -104.99}) {
		t.Errorf("Start() = %v", g.Start())
	}
	want := Bounds{{39.16, -108.73}, {39.74, -104.99}}
	if g.Bounds != want {
		t.Errorf("Bounds = %v, want %v", g.Bounds, want)
	}
	if g.Miles() < 150 || g.Miles() > 250 {
		t.Errorf("Miles() = %.1f, expected roughly 200", g.Miles())
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(`<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`))
	if !errors.Is(err, ErrNoGeometry) {
		t.Errorf("empty gpx error = %v, want ErrNoGeometry", err)
	}
	if _, err := Parse(strings.NewReader("not xml at all <")); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseRouteFallback(t *testing.T) {
	doc := `<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"><rte><name>planned</name>
<rtept lat="1" lon="2"></rtept><rtept lat="3" lon="4"></rtept></rte></gpx>`
	g, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "planned" || g.End() != (LatLng{3, 4}) {
		t.Errorf("route geometry = %+v", g)
	}
}

func newTestOverlay(docs map[string]string) (*Overlay, *fakeOpener) {
	op := &fakeOpener{docs: docs, gates: map[string]chan struct{}{}}
	return NewOverlay(NewLoader(op), Style{}), op
}

func sampleDocs() map[string]string {
	return map[string]string{
		"/assets/gpx/1.gpx": gpxDoc("one", [2]float64{10, 20}, [2]float64{11, 21}),
		"/assets/gpx/2.gpx": gpxDoc("two", [2]float64{11, 21}, [2]float64{12, 22}),
		"/assets/gpx/5.gpx": gpxDoc("five", [2]float64{14, 24}, [2]float64{15, 25}),
	}
}

func TestLoadAllMarkers(t *testing.T) {
	ov, _ := newTestOverlay(sampleDocs())
	tracks := []string{"/assets/gpx/5.gpx", "/assets/gpx/2.gpx", "/assets/gpx/1.gpx"}

	if n := ov.LoadAll(context.Background(), tracks); n != 3 {
		t.Fatalf("LoadAll added %d tracks, want 3", n)
	}

	for _, day := range []journal.Day{1, 2, 5} {
		seg, ok := ov.Segment(day)
		if !ok {
			t.Fatalf("day %d missing", day)
		}
		last := seg.Geometry.Coordinates[len(seg.Geometry.Coordinates)-1]
		if seg.End.Position != (LatLng{last[1], last[0]}) {
			t.Errorf("day %d end marker %v is not the reversed last coordinate %v", day, seg.End.Position, last)
		}
		if (seg.Start != nil) != (day == 1) {
			t.Errorf("day %d start marker = %v", day, seg.Start)
		}
	}

	seg, _ := ov.Segment(1)
	if seg.Start.Position != (LatLng{10, 20}) {
		t.Errorf("start marker = %v", seg.Start.Position)
	}
	if len(seg.Markers()) != 2 {
		t.Errorf("day 1 should have two markers")
	}
}

func TestLoadAllOutOfOrder(t *testing.T) {
	ov, op := newTestOverlay(sampleDocs())
	gate := make(chan struct{})
	op.gates["/assets/gpx/1.gpx"] = gate

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if _, ok := ov.Segment(5); ok {
				break
			}
			time.Sleep(time.Millisecond)
		}
		close(gate)
	}()

	n := ov.LoadAll(context.Background(), []string{"/assets/gpx/1.gpx", "/assets/gpx/5.gpx"})
	wg.Wait()
	if n != 2 {
		t.Fatalf("added %d tracks", n)
	}

	five, _ := ov.Segment(5)
	if five.Start != nil {
		t.Error("day 5 loaded first but must not get a start marker")
	}
	one, _ := ov.Segment(1)
	if one.Start == nil {
		t.Error("day 1 must get the start marker")
	}
}

func TestLoadAllFailuresLeaveDayAbsent(t *testing.T) {
	docs := sampleDocs()
	docs["/assets/gpx/3.gpx"] = `<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`
	ov, _ := newTestOverlay(docs)

	tracks := []string{"/assets/gpx/1.gpx", "/assets/gpx/3.gpx", "/assets/gpx/4.gpx", "/assets/gpx/notaday.gpx"}
	if n := ov.LoadAll(context.Background(), tracks); n != 1 {
		t.Errorf("added %d tracks, want 1", n)
	}
	for _, day := range []journal.Day{3, 4} {
		if _, ok := ov.Segment(day); ok {
			t.Errorf("day %d should be absent", day)
		}
	}
}

func TestLoadAllWritesOnce(t *testing.T) {
	docs := sampleDocs()
	docs["http://mirror/2.gpx"] = gpxDoc("mirror", [2]float64{50, 50}, [2]float64{51, 51})
	ov, _ := newTestOverlay(docs)

	ov.LoadAll(context.Background(), []string{"/assets/gpx/2.gpx"})
	if n := ov.LoadAll(context.Background(), []string{"http://mirror/2.gpx"}); n != 0 {
		t.Errorf("second load for day 2 added %d", n)
	}
	seg, _ := ov.Segment(2)
	if seg.Geometry.Name != "two" {
		t.Errorf("day 2 was overwritten by %q", seg.Geometry.Name)
	}
}

func TestActivate(t *testing.T) {
	ov, _ := newTestOverlay(sampleDocs())
	ov.LoadAll(context.Background(), []string{"/assets/gpx/1.gpx", "/assets/gpx/2.gpx"})

	if ov.Color(1) != "blue" || ov.Color(2) != "blue" {
		t.Error("tracks should start with the default color")
	}

	bounds, ok := ov.Activate(2)
	if !ok {
		t.Fatal("Activate(2) failed")
	}
	if bounds != (Bounds{{11, 21}, {12, 22}}) {
		t.Errorf("bounds = %v", bounds)
	}
	if ov.Color(2) != "red" || ov.Color(1) != "blue" {
		t.Errorf("colors after Activate(2): 1=%s 2=%s", ov.Color(1), ov.Color(2))
	}

	ov.Activate(1)
	if ov.Color(1) != "red" || ov.Color(2) != "blue" {
		t.Errorf("previous track not reset: 1=%s 2=%s", ov.Color(1), ov.Color(2))
	}

	if _, ok := ov.Activate(9); ok {
		t.Error("Activate(9) should report no track")
	}
	if ov.Active() != 1 {
		t.Errorf("unknown day changed active to %d", ov.Active())
	}
}

func TestForkKeepsOwnActiveDay(t *testing.T) {
	base, _ := newTestOverlay(sampleDocs())
	base.LoadAll(context.Background(), []string{"/assets/gpx/1.gpx", "/assets/gpx/2.gpx"})

	a, b := base.Fork(), base.Fork()
	a.Activate(1)
	b.Activate(2)
	if a.Active() != 1 || b.Active() != 2 || base.Active() != 0 {
		t.Errorf("active days leaked: base=%d a=%d b=%d", base.Active(), a.Active(), b.Active())
	}
	if a.Len() != 2 {
		t.Errorf("fork should see loaded tracks")
	}
}

func TestFeatureCollection(t *testing.T) {
	ov, _ := newTestOverlay(sampleDocs())
	ov.LoadAll(context.Background(), []string{"/assets/gpx/1.gpx", "/assets/gpx/2.gpx"})
	ov.Activate(2)

	content := journal.NewAllContent(map[journal.Day]journal.ContentItem{
		2: {
			Title: "Day 2 &#8211; Fruita to Moab",
			Fields: journal.Fields{
				MilesAndElevation: journal.MilesAndElevation{Miles: "10"},
			},
		},
	})

	fc := ov.FeatureCollection(content)
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %+v", fc)
	}
	if fc.Active != 2 || fc.Bounds == nil {
		t.Errorf("active = %d, bounds = %v", fc.Active, fc.Bounds)
	}

	one, two := fc.Features[0].Properties, fc.Features[1].Properties
	if one.Color != "blue" || two.Color != "red" || !two.Active {
		t.Errorf("styles: %+v / %+v", one, two)
	}
	if one.Tooltip.Headings != nil {
		t.Error("day 1 has no content, tooltip should not have headings")
	}
	if two.Tooltip.Headings == nil || two.Tooltip.Headings.To != "Moab" {
		t.Errorf("day 2 tooltip headings = %+v", two.Tooltip.Headings)
	}
	if two.Tooltip.Stats == nil || two.Tooltip.Stats.Kilometers != 16 {
		t.Errorf("day 2 tooltip stats = %+v", two.Tooltip.Stats)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"coordinates":[[20,10],[21,11]]`) {
		t.Errorf("geojson coordinates not lon,lat: %s", data)
	}
	if !strings.Contains(string(data), `"latlng":[10,20]`) {
		t.Errorf("markers not lat,lng: %s", data)
	}
}

func TestTooltipHeadingsArePlainText(t *testing.T) {
	content := journal.NewAllContent(map[journal.Day]journal.ContentItem{
		4: {Title: "Day 4 &#8211; Rock &amp; Roll to <b>Moab</b>"},
	})
	seg := SegmentAndMarker{Day: 4, Geometry: Geometry{Resource: "/assets/gpx/4.gpx"}}

	tip := TooltipFor(seg, content)
	if tip.Headings == nil {
		t.Fatal("expected headings")
	}
	if tip.Headings.From != "Rock & Roll" {
		t.Errorf("From = %q, want entities decoded", tip.Headings.From)
	}
	if tip.Headings.To != "<b>Moab</b>" {
		t.Errorf("To = %q, markup should stay literal text", tip.Headings.To)
	}
}

func TestTooltipTruncatesName(t *testing.T) {
	seg := SegmentAndMarker{
		Day: 1,
		Geometry: Geometry{
			Resource:     "/assets/gpx/1.gpx",
			Name:         "A very long track name that goes on and on",
			LengthMeters: 1609.344 * 12.345,
		},
	}
	tip := TooltipFor(seg, nil)
	if got := []rune(tip.Name); len(got) != 31 {
		t.Errorf("name has %d runes, want 31", len(got))
	}
	if tip.Miles != "12.35" && tip.Miles != "12.34" {
		t.Errorf("Miles = %q", tip.Miles)
	}
	if tip.Resource != "/assets/gpx/1.gpx" {
		t.Errorf("Resource = %q", tip.Resource)
	}
}
