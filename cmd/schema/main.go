// Command schema writes JSON schemas for the persisted progression snapshots,
// the catalog file and the gameplay event payload.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/progression"
	"github.com/AccelByte/extend-runner-progression/pkg/service"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas to")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	for name, schema := range buildSchemas() {
		path := filepath.Join(outDir, name+".schema.json")
		if err := writeSchema(path, schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

// buildSchemas returns one schema per snapshot store key, plus "catalog" and
// "gameplay_event".
func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	reflect := func(v any, title, description string) *jsonschema.Schema {
		schema := reflector.Reflect(v)
		schema.Title = title
		schema.Description = description
		return schema
	}

	return map[string]*jsonschema.Schema{
		progression.DailyKey:       reflect(new(progression.DailySnapshot), "Daily missions snapshot", "Data of the daily missions envelope"),
		progression.WeeklyKey:      reflect(new(progression.WeeklySnapshot), "Weekly missions snapshot", "Data of the weekly missions envelope"),
		progression.LoginKey:       reflect(new(progression.LoginSnapshot), "Login rewards snapshot", "Data of the login rewards envelope"),
		progression.AchievementKey: reflect(new(progression.AchievementSnapshot), "Achievements snapshot", "Data of the achievements envelope"),
		progression.LifetimeKey:    reflect(new(progression.LifetimeSnapshot), "Lifetime stats snapshot", "Data of the lifetime stats envelope"),
		"catalog":                  reflect(new(config.Catalog), "Progression catalog", "Validates catalog.json overrides"),
		"gameplay_event":           reflect(new(service.GameplayEvent), "Gameplay event", "Payload of the gameplay events topic and POST /api/v1/events"),
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
