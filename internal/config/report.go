// Package config loads the optional report options file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReportConfig holds presentation options for report generation. Fields
// omitted from the JSON stay nil and fall back to the defaults returned by
// the Get* methods, so partial configs are safe. Store paths and candidate
// selection are deliberately not configurable here; those are run inputs
// and come from flags.
type ReportConfig struct {
	// Coincidence store sub-partition to read.
	Partition *string `json:"partition,omitempty"`

	// Detector-name order of the per-detector report rows. Empty means
	// lexicographic.
	RowOrder []string `json:"row_order,omitempty"`

	// Stat-distribution figure options.
	FigureBins   *int     `json:"figure_bins,omitempty"`
	FigureWidth  *float64 `json:"figure_width_inches,omitempty"`
	FigureHeight *float64 `json:"figure_height_inches,omitempty"`
}

// EmptyReportConfig returns a ReportConfig with all fields unset.
func EmptyReportConfig() *ReportConfig {
	return &ReportConfig{}
}

// LoadReportConfig loads a ReportConfig from a JSON file. The file must
// have a .json extension and stay under the size cap.
func LoadReportConfig(path string) (*ReportConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyReportConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *ReportConfig) Validate() error {
	if c.Partition != nil && *c.Partition == "" {
		return fmt.Errorf("partition must not be empty")
	}
	for i, name := range c.RowOrder {
		if name == "" {
			return fmt.Errorf("row_order[%d] must not be empty", i)
		}
	}
	if c.FigureBins != nil && *c.FigureBins < 2 {
		return fmt.Errorf("figure_bins must be at least 2, got %d", *c.FigureBins)
	}
	if c.FigureWidth != nil && *c.FigureWidth <= 0 {
		return fmt.Errorf("figure_width_inches must be positive, got %f", *c.FigureWidth)
	}
	if c.FigureHeight != nil && *c.FigureHeight <= 0 {
		return fmt.Errorf("figure_height_inches must be positive, got %f", *c.FigureHeight)
	}
	return nil
}

// GetPartition returns the sub-partition name or the default.
func (c *ReportConfig) GetPartition() string {
	if c.Partition == nil {
		return "foreground" // default
	}
	return *c.Partition
}

// GetRowOrder returns the configured row order, nil for lexicographic.
func (c *ReportConfig) GetRowOrder() []string {
	return c.RowOrder
}

// GetFigureBins returns the histogram bin count or the default.
func (c *ReportConfig) GetFigureBins() int {
	if c.FigureBins == nil {
		return 50 // default
	}
	return *c.FigureBins
}

// GetFigureWidth returns the figure width in inches or the default.
func (c *ReportConfig) GetFigureWidth() float64 {
	if c.FigureWidth == nil {
		return 10.0 // default
	}
	return *c.FigureWidth
}

// GetFigureHeight returns the figure height in inches or the default.
func (c *ReportConfig) GetFigureHeight() float64 {
	if c.FigureHeight == nil {
		return 6.0 // default
	}
	return *c.FigureHeight
}
