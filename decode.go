package deckexport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// maxSnapshotSize bounds the size of a snapshot file read from disk.
const maxSnapshotSize = 64 << 20 // 64 MB

// DecodePresentation parses a snapshot in the editor's JSON wire format or
// the equivalent YAML. Settings absent from the input keep their
// DefaultSettings values.
func DecodePresentation(data []byte) (*Presentation, error) {
	p := &Presentation{Settings: DefaultSettings()}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to decode presentation: empty input")
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, p); err != nil {
			return nil, fmt.Errorf("failed to decode presentation JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, p); err != nil {
			return nil, fmt.Errorf("failed to decode presentation YAML: %w", err)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadPresentation loads a snapshot from a .json, .yaml or .yml file.
func ReadPresentation(path string) (*Presentation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	if info.Size() > maxSnapshotSize {
		return nil, fmt.Errorf("snapshot %s is too large: %d bytes (max %d)", path, info.Size(), maxSnapshotSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return DecodePresentation(data)
}
