package source

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/vitisgeo/terroir-cli/pkg/eogrid"
)

// fakeClient serves canned scenes and records requests.
type fakeClient struct {
	listReq    eogrid.ListScenesRequest
	scenes     []eogrid.SceneMeta
	data       map[string]*eogrid.SceneData
	fetchBands []string
	listErrs   []error // popped per ListScenes call before success
}

func (f *fakeClient) ListScenes(_ context.Context, req eogrid.ListScenesRequest) ([]eogrid.SceneMeta, error) {
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		return nil, err
	}
	f.listReq = req
	return f.scenes, nil
}

func (f *fakeClient) FetchScene(_ context.Context, _, sceneID string, bands []string) (*eogrid.SceneData, error) {
	f.fetchBands = bands
	return f.data[sceneID], nil
}

func ptr(v float64) *float64 { return &v }

func sceneData(id string, t time.Time) *eogrid.SceneData {
	return &eogrid.SceneData{
		Meta: eogrid.SceneMeta{ID: id, Time: t},
		Grid: eogrid.GridSpec{Cols: 2, Rows: 1, MinX: 20, MinY: 41, CellSize: 0.01, SRID: 4326},
		Bands: map[string][]*float64{
			"pr": {ptr(31), nil},
		},
	}
}

func newTestSource(fc *fakeClient) *Source {
	s := New(fc, DefaultCatalog(), Options{RequestsPerSecond: 1000, Burst: 1000, MaxAttempts: 3})
	s.retry.InitialBackoff = time.Millisecond
	s.retry.MaxBackoff = 2 * time.Millisecond
	return s
}

func TestSnapshots_PassesFiltersAndConvertsNulls(t *testing.T) {
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	fc := &fakeClient{
		scenes: []eogrid.SceneMeta{{ID: "s1", Time: april}},
		data:   map[string]*eogrid.SceneData{"s1": sceneData("s1", april)},
	}
	s := newTestSource(fc)

	q := NewQuery(DatasetClimateMonthly).
		FilterDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)).
		FilterCalendarMonths(4, 10).
		SelectBands("pr")

	snaps, err := s.Snapshots(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots", len(snaps))
	}

	if fc.listReq.Collection != "IDAHO_EPSCOR/TERRACLIMATE" {
		t.Errorf("collection = %q", fc.listReq.Collection)
	}
	if fc.listReq.MonthMin != 4 || fc.listReq.MonthMax != 10 {
		t.Errorf("months = %d-%d", fc.listReq.MonthMin, fc.listReq.MonthMax)
	}
	if len(fc.fetchBands) != 1 || fc.fetchBands[0] != "pr" {
		t.Errorf("fetched bands = %v", fc.fetchBands)
	}

	pr, err := snaps[0].Band("pr")
	if err != nil {
		t.Fatal(err)
	}
	if pr.At(0, 0) != 31 {
		t.Errorf("sample = %v", pr.At(0, 0))
	}
	if !math.IsNaN(pr.At(1, 0)) {
		t.Error("null sample should convert to no-data")
	}
}

func TestSnapshots_DefaultBandsFromCatalog(t *testing.T) {
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	fc := &fakeClient{
		scenes: []eogrid.SceneMeta{{ID: "s1", Time: april}},
		data:   map[string]*eogrid.SceneData{"s1": sceneData("s1", april)},
	}
	s := newTestSource(fc)

	if _, err := s.Snapshots(context.Background(), NewQuery(DatasetClimateMonthly)); err != nil {
		t.Fatal(err)
	}
	if len(fc.fetchBands) != 3 {
		t.Errorf("expected catalog default bands, got %v", fc.fetchBands)
	}
}

func TestSnapshots_UnknownDataset(t *testing.T) {
	s := newTestSource(&fakeClient{})
	_, err := s.Snapshots(context.Background(), NewQuery("no-such-dataset"))
	if err == nil {
		t.Fatal("expected unknown-dataset error")
	}
}

func TestSnapshots_RetriesTransientAPIError(t *testing.T) {
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	fc := &fakeClient{
		scenes:   []eogrid.SceneMeta{{ID: "s1", Time: april}},
		data:     map[string]*eogrid.SceneData{"s1": sceneData("s1", april)},
		listErrs: []error{&eogrid.APIError{StatusCode: 503, Body: "unavailable"}},
	}
	s := newTestSource(fc)

	snaps, err := s.Snapshots(context.Background(), NewQuery(DatasetClimateMonthly))
	if err != nil {
		t.Fatalf("transient 503 should be retried: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("got %d snapshots", len(snaps))
	}
}

func TestSnapshots_DoesNotRetryClientError(t *testing.T) {
	fc := &fakeClient{
		listErrs: []error{&eogrid.APIError{StatusCode: 400, Body: "bad bbox"}, nil, nil},
	}
	s := newTestSource(fc)

	if _, err := s.Snapshots(context.Background(), NewQuery(DatasetClimateMonthly)); err == nil {
		t.Fatal("400 should fail without retry")
	}
	// One error was popped; the rest must remain untouched.
	if len(fc.listErrs) != 2 {
		t.Errorf("client error was retried: %d errors left", len(fc.listErrs))
	}
}

func TestStaticField(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data := &eogrid.SceneData{
		Meta: eogrid.SceneMeta{ID: "dem", Time: now},
		Grid: eogrid.GridSpec{Cols: 1, Rows: 1, CellSize: 0.01, SRID: 4326},
		Bands: map[string][]*float64{
			"elevation": {ptr(132)},
		},
	}
	fc := &fakeClient{
		scenes: []eogrid.SceneMeta{{ID: "dem", Time: now}},
		data:   map[string]*eogrid.SceneData{"dem": data},
	}
	s := newTestSource(fc)

	f, err := s.StaticField(context.Background(), NewQuery(DatasetElevation), "")
	if err != nil {
		t.Fatal(err)
	}
	if f.At(0, 0) != 132 {
		t.Errorf("elevation = %v", f.At(0, 0))
	}
}

func TestStaticField_RejectsTemporalDataset(t *testing.T) {
	s := newTestSource(&fakeClient{})
	if _, err := s.StaticField(context.Background(), NewQuery(DatasetClimateMonthly), ""); err == nil {
		t.Fatal("expected error for temporal dataset")
	}
}
