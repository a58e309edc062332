package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/sensorframe/internal/frame"
)

// DefaultConfigPath is where the CLI looks for a slot configuration when no
// --config flag is given.
const DefaultConfigPath = "config/slots.json"

// MaxSlotCount bounds each resolved slot count. Frames larger than this are
// rejected as a configuration error rather than allocated.
const MaxSlotCount = 1 << 16

const maxFileSize = 1 * 1024 * 1024 // 1MB

// SlotConfig is the property configuration a frame schema is resolved from.
// The external counts come from the sensor's property table; the system
// offsets reserve leading slots for fields every frame carries.
type SlotConfig struct {
	SensorID           *string `json:"sensor_id,omitempty" yaml:"sensor_id,omitempty"`
	ExternalIntCount   *int    `json:"external_int_count,omitempty" yaml:"external_int_count,omitempty"`
	ExternalFloatCount *int    `json:"external_float_count,omitempty" yaml:"external_float_count,omitempty"`
	SystemIntOffset    *int    `json:"system_int_offset,omitempty" yaml:"system_int_offset,omitempty"`
	SystemFloatOffset  *int    `json:"system_float_offset,omitempty" yaml:"system_float_offset,omitempty"`
}

// Helper functions to create pointers
func ptrInt(v int) *int          { return &v }
func ptrString(v string) *string { return &v }

// EmptySlotConfig returns a SlotConfig with all fields set to nil.
func EmptySlotConfig() *SlotConfig {
	return &SlotConfig{}
}

// NewSlotConfig returns a config with the given external counts and no
// system offsets.
func NewSlotConfig(sensorID string, intCount, floatCount int) *SlotConfig {
	return &SlotConfig{
		SensorID:           ptrString(sensorID),
		ExternalIntCount:   ptrInt(intCount),
		ExternalFloatCount: ptrInt(floatCount),
	}
}

// LoadSlotConfig loads a SlotConfig from a .json, .yaml or .yml file.
// Fields omitted from the file fall back to the Get* defaults.
func LoadSlotConfig(path string) (*SlotConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySlotConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *SlotConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"external_int_count", c.ExternalIntCount},
		{"external_float_count", c.ExternalFloatCount},
		{"system_int_offset", c.SystemIntOffset},
		{"system_float_offset", c.SystemFloatOffset},
	} {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.name, *f.v)
		}
	}

	if n := c.IntSlotCount(); n > MaxSlotCount {
		return fmt.Errorf("int slot count %d exceeds maximum %d", n, MaxSlotCount)
	}
	if n := c.FloatSlotCount(); n > MaxSlotCount {
		return fmt.Errorf("float slot count %d exceeds maximum %d", n, MaxSlotCount)
	}

	if c.SensorID != nil && strings.TrimSpace(*c.SensorID) == "" {
		return fmt.Errorf("sensor_id must not be blank")
	}
	return nil
}

// GetSensorID returns the sensor_id value or the default.
func (c *SlotConfig) GetSensorID() string {
	if c.SensorID == nil {
		return "default"
	}
	return *c.SensorID
}

// GetExternalIntCount returns the external_int_count value or the default.
func (c *SlotConfig) GetExternalIntCount() int {
	if c.ExternalIntCount == nil {
		return 0
	}
	return *c.ExternalIntCount
}

// GetExternalFloatCount returns the external_float_count value or the default.
func (c *SlotConfig) GetExternalFloatCount() int {
	if c.ExternalFloatCount == nil {
		return 0
	}
	return *c.ExternalFloatCount
}

// GetSystemIntOffset returns the system_int_offset value or the default.
func (c *SlotConfig) GetSystemIntOffset() int {
	if c.SystemIntOffset == nil {
		return 0
	}
	return *c.SystemIntOffset
}

// GetSystemFloatOffset returns the system_float_offset value or the default.
func (c *SlotConfig) GetSystemFloatOffset() int {
	if c.SystemFloatOffset == nil {
		return 0
	}
	return *c.SystemFloatOffset
}

// IntSlotCount is the external int count plus the system int offset.
func (c *SlotConfig) IntSlotCount() int {
	return c.GetExternalIntCount() + c.GetSystemIntOffset()
}

// FloatSlotCount is the external float count plus the system float offset.
func (c *SlotConfig) FloatSlotCount() int {
	return c.GetExternalFloatCount() + c.GetSystemFloatOffset()
}

// Schema resolves the frame schema. A negative resolved count yields
// frame.ErrInvalidArgument.
func (c *SlotConfig) Schema() (frame.Schema, error) {
	s := frame.Schema{
		IntSlots:   c.IntSlotCount(),
		FloatSlots: c.FloatSlotCount(),
	}
	if err := s.Validate(); err != nil {
		return frame.Schema{}, err
	}
	return s, nil
}
