package location

import (
	"context"
	"testing"
)

func TestInitialRegion(t *testing.T) {
	fallback := Region{Latitude: 12.97, Longitude: 77.59, LatitudeDelta: 0.05, LongitudeDelta: 0.05}

	t.Run("centres on device", func(t *testing.T) {
		r := InitialRegion(context.Background(), &fakeDevice{granted: true, pos: Position{Latitude: 10, Longitude: 20}}, fallback)
		if r.Latitude != 10 || r.Longitude != 20 || r.LatitudeDelta != defaultZoomDelta {
			t.Errorf("unexpected region: %+v", r)
		}
	})

	t.Run("denied falls back", func(t *testing.T) {
		r := InitialRegion(context.Background(), &fakeDevice{granted: false}, fallback)
		if r != fallback {
			t.Errorf("expected fallback, got %+v", r)
		}
	})

	t.Run("no fix falls back", func(t *testing.T) {
		r := InitialRegion(context.Background(), &fakeDevice{granted: true, failReads: 1}, fallback)
		if r != fallback {
			t.Errorf("expected fallback, got %+v", r)
		}
	})
}

func TestSimulatedDevice_WalksWaypoints(t *testing.T) {
	d := NewSimulatedDevice([]Position{{Latitude: 0, Longitude: 0}, {Latitude: 1, Longitude: 1}}, 2, true)
	ctx := context.Background()

	want := []float64{0, 0.5, 1, 0.5, 0}
	for i, w := range want {
		pos, err := d.CurrentPosition(ctx)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if pos.Latitude != w {
			t.Errorf("read %d: expected latitude %v, got %v", i, w, pos.Latitude)
		}
	}
}

func TestParseWaypoints(t *testing.T) {
	points, err := ParseWaypoints("12.97,77.59; 12.98,77.60;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 || points[1].Longitude != 77.60 {
		t.Errorf("unexpected points: %+v", points)
	}

	for _, bad := range []string{"12.97", "abc,1", "95,10"} {
		if _, err := ParseWaypoints(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
