package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdOf(t *testing.T) {
	assert.Equal(t, Threshold{Amount: 300, Known: true}, ThresholdOf(300))
	assert.True(t, ThresholdOf(0).IsFree())
	assert.False(t, ThresholdOf(-1).Known)
	assert.False(t, ThresholdOf(math.NaN()).Known)
	assert.False(t, ThresholdOf(math.Inf(1)).Known)
}

func TestThreshold_String(t *testing.T) {
	assert.Equal(t, "unknown", UnknownThreshold().String())
	assert.Equal(t, "free", ThresholdOf(0).String())
	assert.Equal(t, "150.5", ThresholdOf(150.5).String())
}

func TestThreshold_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Threshold
	}{
		{"number", `300`, Threshold{Amount: 300, Known: true}},
		{"zero is free", `0`, Threshold{Amount: 0, Known: true}},
		{"null", `null`, Threshold{}},
		{"empty string", `""`, Threshold{}},
		{"numeric string", `"120"`, Threshold{Amount: 120, Known: true}},
		{"negative coerced", `-5`, Threshold{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Threshold
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThreshold_UnmarshalJSON_Rejects(t *testing.T) {
	for _, input := range []string{`"abc"`, `true`, `{}`} {
		var got Threshold
		assert.Error(t, json.Unmarshal([]byte(input), &got), input)
	}
}

func TestStoreRecord_JSONOmitsUnknownThresholdAndID(t *testing.T) {
	data, err := json.Marshal(StoreRecord{Name: "A"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "deliveryThreshold")
	assert.NotContains(t, string(data), `"id"`)

	data, err = json.Marshal(StoreRecord{ID: 7, Name: "A", DeliveryThreshold: ThresholdOf(0)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deliveryThreshold":0`)
	assert.Contains(t, string(data), `"id":7`)
}

func TestStoreRecord_Validate(t *testing.T) {
	assert.NoError(t, StoreRecord{Name: "Noodle Bar"}.Validate())
	assert.ErrorIs(t, StoreRecord{Name: "  "}.Validate(), ErrEmptyName)
}

func TestPatch_ApplyKeepsID(t *testing.T) {
	base := StoreRecord{ID: 1, Name: "A", Notes: "old"}
	incoming := StoreRecord{ID: 99, Name: "A", Notes: "new", IsFavorite: true, UpdatedAt: 5}

	got := FullPatch(incoming).Apply(base)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "new", got.Notes)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, int64(5), got.UpdatedAt)
}

func TestPatch_Partial(t *testing.T) {
	fav := true
	p := Patch{IsFavorite: &fav}
	assert.False(t, p.IsEmpty())
	assert.True(t, Patch{}.IsEmpty())

	got := p.Apply(StoreRecord{ID: 2, Name: "B", Notes: "keep"})
	assert.Equal(t, "keep", got.Notes)
	assert.True(t, got.IsFavorite)
}

func TestSortForDisplay(t *testing.T) {
	records := []StoreRecord{
		{Name: "old", UpdatedAt: 1},
		{Name: "fav-old", UpdatedAt: 2, IsFavorite: true},
		{Name: "new", UpdatedAt: 10},
		{Name: "fav-new", UpdatedAt: 20, IsFavorite: true},
	}
	SortForDisplay(records)

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"fav-new", "fav-old", "new", "old"}, names)
}

func TestMatches_CaseInsensitive(t *testing.T) {
	r := StoreRecord{Name: "Döner Haus", Notes: "Try the FALAFEL"}
	assert.True(t, Matches(r, "falafel"))
	assert.True(t, Matches(r, "DÖNER"))
	assert.True(t, Matches(r, ""))
	assert.False(t, Matches(r, "pizza"))
}

func TestFilter(t *testing.T) {
	records := []StoreRecord{{Name: "Pizza"}, {Name: "Sushi", Notes: "pizza roll"}, {Name: "Tacos"}}
	assert.Len(t, Filter(records, "pizza"), 2)
	assert.Len(t, Filter(records, ""), 3)
}

func TestParseThreshold(t *testing.T) {
	got, err := ParseThreshold("  ")
	require.NoError(t, err)
	assert.False(t, got.Known)

	got, err = ParseThreshold("0")
	require.NoError(t, err)
	assert.True(t, got.IsFree())

	got, err = ParseThreshold("12.5")
	require.NoError(t, err)
	assert.Equal(t, ThresholdOf(12.5), got)

	_, err = ParseThreshold("-1")
	assert.ErrorContains(t, err, "negative")

	_, err = ParseThreshold("cheap")
	assert.Error(t, err)

	_, err = ParseThreshold("NaN")
	assert.Error(t, err)
}
