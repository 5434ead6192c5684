package sprite

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pixelproof/svgbbox-mcp/internal/geom"
	"github.com/pixelproof/svgbbox-mcp/internal/raster"
	"github.com/pixelproof/svgbbox-mcp/internal/scan"
	"github.com/pixelproof/svgbbox-mcp/internal/svg"
)

func TestGroups(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want map[string][]string
	}{
		{
			name: "dashed counters",
			ids:  []string{"icon-01", "icon-02", "icon-03"},
			want: map[string][]string{"icon": {"icon-01", "icon-02", "icon-03"}},
		},
		{
			name: "bare counters",
			ids:  []string{"star1", "star2"},
			want: map[string][]string{"star": {"star1", "star2"}},
		},
		{
			name: "underscore separator",
			ids:  []string{"tile_1", "tile_2", "tile_10"},
			want: map[string][]string{"tile": {"tile_1", "tile_2", "tile_10"}},
		},
		{
			name: "mixed groups and strays",
			ids:  []string{"icon-1", "icon-2", "logo", "badge-7"},
			want: map[string][]string{"icon": {"icon-1", "icon-2"}},
		},
		{
			name: "lone member is not a group",
			ids:  []string{"icon-1", "star-1"},
			want: map[string][]string{},
		},
		{
			name: "no counters",
			ids:  []string{"header", "footer"},
			want: map[string][]string{},
		},
		{
			name: "all digits",
			ids:  []string{"123", "456"},
			want: map[string][]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Groups(tt.ids)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Groups(%v) = %v, want %v", tt.ids, got, tt.want)
			}
		})
	}
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"icon-01", "icon"},
		{"icon_01", "icon"},
		{"star1", "star"},
		{"frame-2-3", "frame-2"},
		{"logo", ""},
		{"42", ""},
		{"-1", ""},
		{"_7", ""},
	}
	for _, tt := range tests {
		if got := prefixOf(tt.id); got != tt.want {
			t.Errorf("prefixOf(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func spriteDoc(t *testing.T) *svg.Document {
	t.Helper()
	doc, err := svg.Parse(strings.NewReader(`<svg width="200" height="100">
		<rect id="icon-1" x="10" y="10" width="20" height="20" fill="#000000"/>
		<rect id="icon-2" x="60" y="10" width="20" height="20" fill="#000000"/>
		<rect id="icon-3" x="110" y="40" width="20" height="20" fill="#000000"/>
	</svg>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func softwareEngine() *scan.Engine {
	return scan.New(raster.NewSoftware())
}

func TestMultiScan(t *testing.T) {
	doc := spriteDoc(t)
	ids := []string{"icon-1", "icon-2", "icon-3"}

	results, err := MultiScan(context.Background(), softwareEngine, doc, ids, scan.DefaultOptions())
	if err != nil {
		t.Fatalf("MultiScan failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("result count: got %d, want 3", len(results))
	}

	wants := map[string]geom.BBox{
		"icon-1": {X: 10, Y: 10, Width: 20, Height: 20},
		"icon-2": {X: 60, Y: 10, Width: 20, Height: 20},
		"icon-3": {X: 110, Y: 40, Width: 20, Height: 20},
	}
	for id, want := range wants {
		res, ok := results[id]
		if !ok {
			t.Fatalf("missing result for %s", id)
		}
		b := res.Global.BBox
		if b.X > want.X || b.Y > want.Y || b.MaxX() < want.MaxX() || b.MaxY() < want.MaxY() {
			t.Errorf("%s: box %+v does not contain %+v", id, b, want)
		}
		if b.Width > want.Width+1 || b.Height > want.Height+1 {
			t.Errorf("%s: box %+v is too loose around %+v", id, b, want)
		}
	}
}

func TestMultiScan_FailureCarriesNoPartial(t *testing.T) {
	doc := spriteDoc(t)
	ids := []string{"icon-1", "icon-2", "missing"}

	results, err := MultiScan(context.Background(), softwareEngine, doc, ids, scan.DefaultOptions())
	if err == nil {
		t.Fatal("unknown member id should fail the whole call")
	}
	if results != nil {
		t.Errorf("failed call must not return partial results, got %v", results)
	}
}

func TestMultiScan_EmptyMemberFails(t *testing.T) {
	doc, err := svg.Parse(strings.NewReader(`<svg width="100" height="100">
		<rect id="a-1" x="10" y="10" width="20" height="20" fill="#000000"/>
		<rect id="a-2" x="50" y="50" width="20" height="20" fill="none"/>
	</svg>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	_, err = MultiScan(context.Background(), softwareEngine, doc, []string{"a-1", "a-2"}, scan.DefaultOptions())
	var empty *scan.EmptyContentError
	if !errors.As(err, &empty) {
		t.Fatalf("got %v, want *EmptyContentError for the invisible member", err)
	}
	if empty.Target != "a-2" {
		t.Errorf("failing target: got %q, want a-2", empty.Target)
	}
}

func TestAggregate(t *testing.T) {
	doc := spriteDoc(t)
	ids := []string{"icon-1", "icon-2", "icon-3"}

	results, err := MultiScan(context.Background(), softwareEngine, doc, ids, scan.DefaultOptions())
	if err != nil {
		t.Fatalf("MultiScan failed: %v", err)
	}

	env, ok := Aggregate(results)
	if !ok {
		t.Fatal("aggregate of non-empty results should exist")
	}
	if env.Space != "global" || env.Policy != "full" {
		t.Errorf("aggregate tags: space=%q policy=%q", env.Space, env.Policy)
	}
	// The envelope covers every member box exactly.
	want := geom.BBox{X: 10, Y: 10, Width: 120, Height: 50}
	b := env.BBox
	if b.X > want.X || b.Y > want.Y || b.MaxX() < want.MaxX() || b.MaxY() < want.MaxY() {
		t.Errorf("envelope %+v does not contain %+v", b, want)
	}

	// Union is order independent, so aggregating a rebuilt map with a
	// different insertion order gives the same envelope.
	reordered := map[string]*scan.Result{}
	for _, id := range []string{"icon-3", "icon-1", "icon-2"} {
		reordered[id] = results[id]
	}
	again, _ := Aggregate(reordered)
	if again.BBox != env.BBox {
		t.Errorf("aggregate depends on order: %+v vs %+v", again.BBox, env.BBox)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if _, ok := Aggregate(nil); ok {
		t.Error("aggregate of an empty set should not exist")
	}
}

func TestSortedMembers(t *testing.T) {
	results := map[string]*scan.Result{
		"b-2": {}, "a-1": {}, "b-1": {},
	}
	got := SortedMembers(results)
	want := []string{"a-1", "b-1", "b-2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedMembers = %v, want %v", got, want)
	}
}
