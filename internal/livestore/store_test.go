package livestore

import (
	"context"
	"errors"
	"testing"
	"time"
)

const waitFor = 2 * time.Second

func TestSplit(t *testing.T) {
	testCases := []struct {
		path       string
		collection string
		id         string
		wantErr    bool
	}{
		{path: "locations/driver-1", collection: "locations", id: "driver-1"},
		{path: "schedules/driver-1/s-9", collection: "schedules/driver-1", id: "s-9"},
		{path: "locations/", wantErr: true},
		{path: "locations", wantErr: true},
		{path: "schedules//s-9", wantErr: true},
		{path: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			collection, id, err := Split(tc.path)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidPath) {
					t.Fatalf("expected ErrInvalidPath, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if collection != tc.collection || id != tc.id {
				t.Errorf("got (%q, %q), want (%q, %q)", collection, id, tc.collection, tc.id)
			}
		})
	}
}

func TestRecordDecode_InjectsID(t *testing.T) {
	rec := Record{ID: "trip-7", Data: map[string]interface{}{"driverId": "d1", "tripCompleted": true}}

	var out struct {
		ID            string `json:"id"`
		DriverID      string `json:"driverId"`
		TripCompleted bool   `json:"tripCompleted"`
	}
	if err := rec.Decode(&out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != "trip-7" || out.DriverID != "d1" || !out.TripCompleted {
		t.Errorf("unexpected decode result: %+v", out)
	}
}

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("rejects empty driver segment", func(t *testing.T) {
		err := s.Write(ctx, Join("locations", ""), map[string]interface{}{"currentLatitude": 1})
		if !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("expected ErrInvalidPath, got %v", err)
		}
	})

	t.Run("write overwrites", func(t *testing.T) {
		path := "locations/d1"
		if err := s.Write(ctx, path, map[string]interface{}{"currentLatitude": 1.5, "extra": "x"}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := s.Write(ctx, path, map[string]interface{}{"currentLatitude": 2.5}); err != nil {
			t.Fatalf("write: %v", err)
		}
		rec, err := s.Get(ctx, path)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if rec == nil || rec.Data["currentLatitude"] != 2.5 {
			t.Fatalf("unexpected record: %+v", rec)
		}
		if _, ok := rec.Data["extra"]; ok {
			t.Error("expected full overwrite to drop old fields")
		}
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		rec, err := s.Get(ctx, "locations/nobody")
		if err != nil || rec != nil {
			t.Fatalf("expected (nil, nil), got (%+v, %v)", rec, err)
		}
	})

	t.Run("patch merges", func(t *testing.T) {
		path := "trips/t1"
		if err := s.Write(ctx, path, map[string]interface{}{"driverId": "d1", "status": "scheduled"}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := s.Patch(ctx, path, map[string]interface{}{"status": "en_route"}); err != nil {
			t.Fatalf("patch: %v", err)
		}
		rec, _ := s.Get(ctx, path)
		if rec.Data["driverId"] != "d1" || rec.Data["status"] != "en_route" {
			t.Errorf("unexpected merged record: %+v", rec.Data)
		}
	})

	t.Run("list filters on one field", func(t *testing.T) {
		_ = s.Write(ctx, "trips/t2", map[string]interface{}{"driverId": "d2"})
		_ = s.Write(ctx, "trips/t3", map[string]interface{}{"driverId": "d1"})
		recs, err := s.List(ctx, Query{Collection: "trips", Field: "driverId", Equals: "d1"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(recs) != 2 || recs[0].ID != "t1" || recs[1].ID != "t3" {
			t.Errorf("unexpected records: %+v", recs)
		}
	})

	t.Run("subscribe delivers initial state and changes", func(t *testing.T) {
		got := make(chan *Record, 16)
		sub, err := s.Subscribe(ctx, "locations/d9", func(rec *Record, err error) {
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			got <- rec
		})
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		defer sub.Unsubscribe()

		if rec := receive(t, got); rec != nil {
			t.Fatalf("expected nil initial snapshot, got %+v", rec)
		}
		if err := s.Write(ctx, "locations/d9", map[string]interface{}{"currentLatitude": 12.9}); err != nil {
			t.Fatalf("write: %v", err)
		}
		rec := receive(t, got)
		if rec == nil || rec.Data["currentLatitude"] != 12.9 {
			t.Fatalf("unexpected snapshot: %+v", rec)
		}
	})

	t.Run("query subscription sees new children", func(t *testing.T) {
		got := make(chan []Record, 16)
		sub, err := s.SubscribeQuery(ctx, Query{Collection: "trips", Field: "driverId", Equals: "d5"}, func(recs []Record, err error) {
			if err == nil {
				got <- recs
			}
		})
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		defer sub.Unsubscribe()

		if recs := receive(t, got); len(recs) != 0 {
			t.Fatalf("expected empty initial result, got %+v", recs)
		}
		_ = s.Write(ctx, "trips/t50", map[string]interface{}{"driverId": "d5"})
		deadline := time.After(waitFor)
		for {
			select {
			case recs := <-got:
				if len(recs) == 1 && recs[0].ID == "t50" {
					return
				}
			case <-deadline:
				t.Fatal("timed out waiting for query update")
			}
		}
	})

	t.Run("no delivery after unsubscribe", func(t *testing.T) {
		got := make(chan *Record, 16)
		sub, err := s.Subscribe(ctx, "locations/d8", func(rec *Record, err error) { got <- rec })
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		receive(t, got)
		sub.Unsubscribe()
		sub.Unsubscribe() // idempotent

		_ = s.Write(ctx, "locations/d8", map[string]interface{}{"currentLatitude": 1})
		select {
		case rec := <-got:
			t.Fatalf("unexpected delivery after unsubscribe: %+v", rec)
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for delivery")
	}
	var zero T
	return zero
}
