package backup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/foodmap/internal/model"
)

func TestDecode_LegacyArray(t *testing.T) {
	p, err := Decode([]byte(`[{"name":"A","deliveryThreshold":"30"},{"name":"B"}]`))
	require.NoError(t, err)

	assert.Zero(t, p.Version)
	assert.Nil(t, p.Settings)
	require.Len(t, p.Stores, 2)
	assert.Equal(t, model.ThresholdOf(30), p.Stores[0].DeliveryThreshold)
	assert.False(t, p.Stores[1].DeliveryThreshold.Known)
}

func TestDecode_VersionedObject(t *testing.T) {
	p, err := Decode([]byte(`{
		"version": 1,
		"settings": {"showAnnouncement": false, "announcementContent": "Closed"},
		"stores": [{"id": 7, "name": "A", "isFavorite": true, "updatedAt": 99}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 1, p.Version)
	require.NotNil(t, p.Settings)
	assert.Equal(t, model.Settings{ShowAnnouncement: false, AnnouncementContent: "Closed"}, *p.Settings)
	require.Len(t, p.Stores, 1)
	assert.Equal(t, int64(7), p.Stores[0].ID)
	assert.True(t, p.Stores[0].IsFavorite)
	assert.Equal(t, int64(99), p.Stores[0].UpdatedAt)
}

func TestDecode_NullSettingsAndVersion(t *testing.T) {
	p, err := Decode([]byte(`{"version":null,"settings":null,"stores":[]}`))
	require.NoError(t, err)
	assert.Nil(t, p.Settings)
	assert.Empty(t, p.Stores)
}

func TestDecode_ParseError(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.False(t, IsFormatError(err))
}

func TestDecode_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		index int
	}{
		{"scalar", `true`, -1},
		{"object without stores", `{"items":[]}`, -1},
		{"settings not object", `{"settings":"x","stores":[]}`, -1},
		{"bad version", `{"version":"one","stores":[]}`, -1},
		{"element not object", `[{"name":"A"},[1]]`, 1},
		{"missing name", `[{"address":"x"}]`, 0},
		{"bad threshold string", `[{"name":"A","deliveryThreshold":"lots"}]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tt.index, fe.Index)
		})
	}
}

func TestDecode_EmptyNameWrapsErrEmptyName(t *testing.T) {
	_, err := Decode([]byte(`[{"name":""}]`))
	assert.ErrorIs(t, err, model.ErrEmptyName)
	assert.Contains(t, err.Error(), "stores[0]")
}

func TestErrorMessages(t *testing.T) {
	te := &TransactionError{Mode: ModeReplace, Err: errors.New("disk I/O error")}
	assert.Equal(t, "replace import rolled back: disk I/O error", te.Error())
	assert.True(t, IsTransactionError(te))

	fe := &FormatError{Message: "object has no stores array", Index: -1}
	assert.Equal(t, "invalid backup format: object has no stores array", fe.Error())
}
