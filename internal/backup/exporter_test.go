package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/foodmap/internal/metrics"
	"github.com/roach88/foodmap/internal/model"
	"github.com/roach88/foodmap/internal/testutil"
)

func seedForExport(t *testing.T) *fakeSettings {
	t.Helper()
	return &fakeSettings{current: model.Settings{ShowAnnouncement: true, AnnouncementContent: "Lunch at noon"}}
}

func TestExporter_Golden(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, model.StoreRecord{
		Name:              "Dumpling House",
		Address:           "12 Market St",
		OpeningHours:      "10:00-22:00",
		DeliveryThreshold: model.ThresholdOf(25),
		Notes:             "cash only",
		IsFavorite:        true,
		UpdatedAt:         1714564800000,
	})
	require.NoError(t, err)
	_, err = s.Add(ctx, model.StoreRecord{Name: "Corner Cafe", UpdatedAt: 1714564860000})
	require.NoError(t, err)

	var buf bytes.Buffer
	p, err := NewExporter(s, seedForExport(t), WithLogger(discardLogger())).Write(ctx, &buf)
	require.NoError(t, err)
	assert.Len(t, p.Stores, 2)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "export_snapshot", buf.Bytes())
}

func TestExporter_SnapshotIsReadOnly(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, model.StoreRecord{Name: "Only", UpdatedAt: 10})
	require.NoError(t, err)
	before, err := s.List(ctx)
	require.NoError(t, err)

	e := NewExporter(s, seedForExport(t), WithLogger(discardLogger()))
	p1, err := e.Snapshot(ctx)
	require.NoError(t, err)
	p2, err := e.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, CurrentVersion, p1.Version)
	require.NotNil(t, p1.Settings)

	after, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExporter_EmptyStoreWritesEmptyArray(t *testing.T) {
	s := openStore(t)

	var buf bytes.Buffer
	_, err := NewExporter(s, nil, WithLogger(discardLogger())).Write(context.Background(), &buf)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.JSONEq(t, `[]`, string(out["stores"]))
	assert.NotContains(t, out, "settings")
}

func TestExporter_SettingsFailure(t *testing.T) {
	s := openStore(t)

	_, err := NewExporter(s, &fakeSettings{err: errors.New("unreadable")}, WithLogger(discardLogger())).
		Snapshot(context.Background())
	assert.ErrorContains(t, err, "unreadable")
}

func TestExporter_RecordsMetrics(t *testing.T) {
	s := openStore(t)
	m := metrics.New()
	_, err := s.Add(context.Background(), model.StoreRecord{Name: "A"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = NewExporter(s, nil, WithLogger(discardLogger()), WithMetrics(m)).Write(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1.0, prom.ToFloat64(m.Exports))
	assert.Equal(t, 1.0, prom.ToFloat64(m.ExportedStores))
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "food-map-backup-2024-05-01.json", DefaultFileName(testutil.DefaultTime))
	assert.Equal(t, "food-map-backup-2023-12-31.json",
		DefaultFileName(time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC)))

	e := NewExporter(nil, nil, WithClock(testutil.NewDeterministicClock().Now))
	assert.Equal(t, "food-map-backup-2024-05-01.json", e.FileName())
}
