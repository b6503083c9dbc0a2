package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMigrateBackfillsLegacyDocument(t *testing.T) {
	m := NewMigrator()
	doc := map[string]any{
		"user_id": "42",
		"name":    "Zoro",
		"berries": 123,
	}

	require.True(t, m.Migrate(doc, testNow))
	assert.Equal(t, "1.2.0", doc["schema_version"])
	assert.Equal(t, false, doc["is_locked"])
	assert.Equal(t, false, doc["verification_active"])
	assert.Equal(t, 123, doc["berries"], "existing values are kept")
	assert.Equal(t, 1, doc["level"])
	assert.Equal(t, []any{}, doc["team"])
	assert.Nil(t, doc["equipped_fruit"])
	assert.Equal(t, "2024-06-01", doc["start_date"])
	assert.Equal(t, "Zoro", doc["name"])
}

func TestMigrateOnlyNewerSteps(t *testing.T) {
	m := NewMigrator()
	doc := map[string]any{"schema_version": "1.1.0"}

	require.True(t, m.Migrate(doc, testNow))
	_, ok := doc["is_locked"]
	assert.False(t, ok, "1.1.0 step must not run again")
	assert.Equal(t, 0, doc["wins"])
}

func TestMigrateCurrentDocumentUntouched(t *testing.T) {
	m := NewMigrator()
	doc := map[string]any{"schema_version": m.Latest(), "level": 7}

	assert.False(t, m.Migrate(doc, testNow))
	assert.Len(t, doc, 2)
}

func TestMigratorRegisterOrdering(t *testing.T) {
	m := NewMigrator()
	var order []string
	require.NoError(t, m.Register("1.10.0", func(map[string]any, time.Time) { order = append(order, "1.10.0") }))
	require.NoError(t, m.Register("1.3.0", func(map[string]any, time.Time) { order = append(order, "1.3.0") }))
	assert.Equal(t, "1.10.0", m.Latest())

	assert.Error(t, m.Register("1.3.0", func(map[string]any, time.Time) {}))
	assert.Error(t, m.Register("not-a-version", func(map[string]any, time.Time) {}))

	doc := map[string]any{"schema_version": "1.2.0"}
	m.Migrate(doc, testNow)
	assert.Equal(t, []string{"1.3.0", "1.10.0"}, order)
	assert.Equal(t, "1.10.0", doc["schema_version"])
}
