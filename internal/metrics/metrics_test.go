package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordImport(t *testing.T) {
	m := New()

	m.RecordImport("merge", OutcomeSuccess, 2, 3, 1)
	m.RecordImport("merge", OutcomeSuccess, 1, 0, 0)
	m.RecordImport("replace", OutcomeParseError, 0, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ImportRuns.WithLabelValues("merge", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportRuns.WithLabelValues("replace", OutcomeParseError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsWritten.WithLabelValues("merge", "added")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsWritten.WithLabelValues("merge", "updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImagesRejected))
}

func TestRecordExportAndStorage(t *testing.T) {
	m := New()

	m.RecordExport(4)
	m.RecordExport(7)
	m.RecordStorage(100, 1000)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Exports))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ExportedStores))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.StorageUsage))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.StorageQuota))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordImport("merge", OutcomeSuccess, 1, 1, 1)
		m.RecordExport(1)
		m.RecordStorage(1, 2)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordExport(2)

	path := filepath.Join(t.TempDir(), "foodmap.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "foodmap_export_runs_total 1")
	assert.Contains(t, string(data), "foodmap_export_stores 2")
}

func TestWriteTextfile_EmptyPath(t *testing.T) {
	assert.NoError(t, New().WriteTextfile(""))
}
