package faq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadReport is the outcome of reading a configuration file.
type LoadReport struct {
	Path       string
	Categories []*Category
	Skipped    []ValidationError
}

// Load reads and validates the configuration at path. Files ending in .yaml
// or .yml are decoded as YAML, everything else as JSON. Invalid categories,
// including entries with wrongly typed fields, are reported in Skipped; only an
// unreadable or malformed document is an error.
func Load(path string) (*LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read faq config %s: %w", path, err)
	}

	file, err := Decode(data, formatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	categories, skipped := file.Structured.Build()
	return &LoadReport{
		Path:       path,
		Categories: categories,
		Skipped:    skipped,
	}, nil
}

// Format of a configuration document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a configuration document. A document without the
// faq_structured section is rejected.
func Decode(data []byte, format Format) (*File, error) {
	var file File

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
		}
	}

	if file.Structured == nil {
		return nil, fmt.Errorf("%w: missing faq_structured section", ErrConfigMalformed)
	}

	return &file, nil
}
