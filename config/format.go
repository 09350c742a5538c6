package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding for Print.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func (f *Format) UnmarshalText(b []byte) error {
	switch v := Format(b); v {
	case FormatTOML, FormatJSON, FormatYAML:
		*f = v
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected toml, json or yaml", string(b))
	}
}

// Print writes the configuration to w in the given format.
func (c *Config) Print(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(c)
	case FormatTOML, "":
		return toml.NewEncoder(w).Encode(c)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}
