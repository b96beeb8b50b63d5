// Package config holds the runtime settings of the mask server.
//
// Settings start from Default and may be overridden by MASK_MCP_*
// environment variables. Tool arguments override them again per call.
package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/mask-tools-mcp/internal/imaging"
	"github.com/ironsheep/mask-tools-mcp/internal/mask"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel           = "MASK_MCP_LOG_LEVEL"
	EnvExpansionRatio     = "MASK_MCP_EXPANSION_RATIO"
	EnvDefaultStrokeWidth = "MASK_MCP_STROKE_WIDTH"
	EnvSnapRadius         = "MASK_MCP_SNAP_RADIUS"
	EnvSnapThreshold      = "MASK_MCP_SNAP_THRESHOLD"
	EnvPreviewColor       = "MASK_MCP_PREVIEW_COLOR"
	EnvPreviewOpacity     = "MASK_MCP_PREVIEW_OPACITY"
)

// Config holds server-wide defaults for mask building, edge snapping and
// previews.
type Config struct {
	// LogLevel is "info" or "debug".
	LogLevel string `json:"log_level"`

	// Mask compositing
	ExpansionRatio     float64 `json:"expansion_ratio"`
	DefaultStrokeWidth float64 `json:"default_stroke_width"`

	// Edge snapping
	SnapRadius    int     `json:"snap_radius"`
	SnapThreshold float64 `json:"snap_threshold"`

	// Mask preview
	PreviewColor   string  `json:"preview_color"`
	PreviewOpacity float64 `json:"preview_opacity"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	return &Config{
		LogLevel:           "info",
		ExpansionRatio:     mask.DefaultExpansionRatio,
		DefaultStrokeWidth: mask.DefaultStrokeWidth,
		SnapRadius:         imaging.DefaultSnapRadius,
		SnapThreshold:      imaging.DefaultSnapThreshold,
		PreviewColor:       mask.DefaultPreviewColor,
		PreviewOpacity:     mask.DefaultPreviewOpacity,
	}
}

// FromEnv returns Default overlaid with any MASK_MCP_* variables that are
// set. Unparseable values are logged and ignored.
func FromEnv() *Config {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) *Config {
	c := Default()

	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	parseFloat(lookup, EnvExpansionRatio, &c.ExpansionRatio)
	parseFloat(lookup, EnvDefaultStrokeWidth, &c.DefaultStrokeWidth)
	parseFloat(lookup, EnvSnapThreshold, &c.SnapThreshold)
	parseFloat(lookup, EnvPreviewOpacity, &c.PreviewOpacity)
	if v, ok := lookup(EnvSnapRadius); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			log.Printf("Ignoring %s=%q: %v", EnvSnapRadius, v, err)
		} else {
			c.SnapRadius = n
		}
	}
	if v, ok := lookup(EnvPreviewColor); ok {
		c.PreviewColor = strings.TrimSpace(v)
	}

	if err := c.Validate(); err != nil {
		log.Printf("Config: %v", err)
	}
	return c
}

func parseFloat(lookup func(string) (string, bool), key string, dst *float64) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = f
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// Validate resets out-of-range values to their defaults. It returns an
// error listing every field it had to reset; c is usable either way.
func (c *Config) Validate() error {
	var reset []string

	if c.LogLevel != "debug" && c.LogLevel != "info" {
		reset = append(reset, "log_level")
		c.LogLevel = "info"
	}
	if !positive(c.ExpansionRatio) || c.ExpansionRatio > 1 {
		reset = append(reset, "expansion_ratio")
		c.ExpansionRatio = mask.DefaultExpansionRatio
	}
	if !positive(c.DefaultStrokeWidth) {
		reset = append(reset, "default_stroke_width")
		c.DefaultStrokeWidth = mask.DefaultStrokeWidth
	}
	if c.SnapRadius <= 0 || c.SnapRadius > imaging.MaxSnapRadius {
		reset = append(reset, "snap_radius")
		c.SnapRadius = imaging.DefaultSnapRadius
	}
	if !positive(c.SnapThreshold) {
		reset = append(reset, "snap_threshold")
		c.SnapThreshold = imaging.DefaultSnapThreshold
	}
	if _, err := colorful.Hex(c.PreviewColor); err != nil {
		reset = append(reset, "preview_color")
		c.PreviewColor = mask.DefaultPreviewColor
	}
	if !positive(c.PreviewOpacity) || c.PreviewOpacity > 1 {
		reset = append(reset, "preview_opacity")
		c.PreviewOpacity = mask.DefaultPreviewOpacity
	}

	if len(reset) > 0 {
		return fmt.Errorf("reset invalid settings to defaults: %s", strings.Join(reset, ", "))
	}
	return nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
