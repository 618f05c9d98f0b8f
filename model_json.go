package rendergraph

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveModel writes the model to a JSON file.
func SaveModel(m *Model, filename string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	return os.WriteFile(filename, data, 0644)
}

// LoadModel reads a model from a JSON file and validates it with the default
// uniform alignment. NewCore revalidates against the actual device limits.
func LoadModel(filename string) (*Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", filename, err)
	}
	if _, err := validateModel(&m, 0); err != nil {
		return nil, err
	}
	return &m, nil
}
