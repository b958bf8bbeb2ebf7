package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-runner-progression/pkg/progression"
)

func TestBuildSchemas_CoversEverySnapshotKey(t *testing.T) {
	schemas := buildSchemas()

	for _, key := range progression.SnapshotKeys {
		assert.Contains(t, schemas, key)
	}
	assert.Contains(t, schemas, "catalog")
	assert.Contains(t, schemas, "gameplay_event")
	assert.Equal(t, "Progression catalog", schemas["catalog"].Title)
}

func TestWriteSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "daily.schema.json")

	require.NoError(t, writeSchema(path, buildSchemas()[progression.DailyKey]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), "Daily missions snapshot")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
