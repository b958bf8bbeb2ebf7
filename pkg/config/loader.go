package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// CatalogLoader loads and validates the progression catalog from a JSON file.
// It performs file reading, JSON parsing, default filling and validation.
type CatalogLoader struct {
	catalogPath string
	validator   *Validator
	logger      *slog.Logger
}

// NewCatalogLoader creates a new CatalogLoader instance.
//
// Parameters:
//   - catalogPath: Path to the catalog.json file
//   - logger: Structured logger for operational logging
func NewCatalogLoader(catalogPath string, logger *slog.Logger) *CatalogLoader {
	return &CatalogLoader{
		catalogPath: catalogPath,
		validator:   NewValidator(),
		logger:      logger,
	}
}

// LoadCatalog loads the catalog file and returns a validated Catalog.
// This method performs four steps:
// 1. Read the catalog file from disk
// 2. Parse JSON into Catalog struct
// 3. Fill missing sections and per-item defaults
// 4. Validate all business rules
//
// Invalid catalogs prevent startup.
func (l *CatalogLoader) LoadCatalog() (*Catalog, error) {
	data, err := os.ReadFile(l.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	catalog.applyDefaults()

	if err := l.validator.Validate(&catalog); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	l.logger.Info("Catalog loaded successfully",
		"daily_missions", len(catalog.DailyMissions),
		"weekly_missions", len(catalog.WeeklyMissions),
		"achievements", len(catalog.Achievements),
		"calendar_days", len(catalog.LoginCalendar),
		"catalog_path", l.catalogPath,
	)

	return &catalog, nil
}

// LoadCatalogOrDefault loads the catalog at path, or validates and returns
// the built-in catalog when path is empty.
func LoadCatalogOrDefault(path string, logger *slog.Logger) (*Catalog, error) {
	if path == "" {
		catalog := DefaultCatalog()
		if err := NewValidator().Validate(catalog); err != nil {
			return nil, fmt.Errorf("built-in catalog validation failed: %w", err)
		}
		logger.Info("Using built-in catalog")
		return catalog, nil
	}
	return NewCatalogLoader(path, logger).LoadCatalog()
}
