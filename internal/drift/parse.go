package drift

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotStructured is returned when a file's extension marks it as free-form
// text, eligible only for line-level diffing.
var ErrNotStructured = errors.New("not a structured document")

// IsStructured reports whether the file is eligible for field-level diffing,
// based on its extension.
func IsStructured(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ParseDoc decodes file content into a structured document based on the
// path's extension. YAML documents are normalized through a JSON round trip
// so values compare with one number representation regardless of source
// format.
func ParseDoc(path string, data []byte) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		normalized, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		var doc map[string]any
		if err := json.Unmarshal(normalized, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	return nil, ErrNotStructured
}
