package backup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_CleanBackups(t *testing.T) {
	clean := []string{
		`[]`,
		`[{"name":"A"}]`,
		`{"version":1,"stores":[]}`,
		`{"version":1,"settings":{"showAnnouncement":true,"announcementContent":"hi"},"stores":[
			{"id":1,"name":"A","address":"","openingHours":"","deliveryThreshold":25,"notes":"","menuImage":"","isFavorite":true,"updatedAt":1714564800000},
			{"name":"B","deliveryThreshold":null},
			{"name":"C","deliveryThreshold":""},
			{"name":"D","deliveryThreshold":"12.5"},
			{"name":"E","extra":"ignored"}
		]}`,
		`{"version":1,"settings":null,"stores":[]}`,
	}
	for _, raw := range clean {
		problems, err := Lint([]byte(raw))
		require.NoError(t, err, raw)
		assert.Empty(t, problems, raw)
	}
}

func TestLint_ReportsEveryProblem(t *testing.T) {
	raw := `{
  "version": 1,
  "stores": [
    {"name": "Neg", "deliveryThreshold": -5},
    {"name": ""},
    {"name": "Fav", "isFavorite": "yes"}
  ]
}`
	problems, err := Lint([]byte(raw))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(problems), 3)

	var paths []string
	for _, p := range problems {
		paths = append(paths, p.Path)
	}
	joined := strings.Join(paths, " ")
	assert.Contains(t, joined, "stores.0.deliveryThreshold")
	assert.Contains(t, joined, "stores.1.name")
	assert.Contains(t, joined, "stores.2.isFavorite")
}

func TestLint_MissingStores(t *testing.T) {
	problems, err := Lint([]byte(`{"version":1}`))
	require.NoError(t, err)
	assert.NotEmpty(t, problems)
}

func TestLint_WrongTopLevelShape(t *testing.T) {
	problems, err := Lint([]byte(`42`))
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "expected an array")
}

func TestLint_NotJSON(t *testing.T) {
	_, err := Lint([]byte(`{"stores": [`))
	assert.True(t, IsParseError(err))
}

func TestProblem_String(t *testing.T) {
	assert.Equal(t, "line 3: stores.0.name: bad", Problem{Path: "stores.0.name", Message: "bad", Line: 3}.String())
	assert.Equal(t, "stores: bad", Problem{Path: "stores", Message: "bad"}.String())
}
