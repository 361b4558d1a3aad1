package config

import (
	"fmt"
	"os"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadExamLayout returns the default layout when path is empty, otherwise the layout
// read from the YAML file at path:
//
//	listening: [1, 2, 3, 4]
//	reading: [1, 2, 3, 4, 5]
func LoadExamLayout(path string) (models.ExamLayout, error) {
	if path == "" {
		return models.DefaultExamLayout(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exam layout: %w", err)
	}

	var raw map[string][]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse exam layout %s: %w", path, err)
	}

	layout := make(models.ExamLayout, len(raw))
	for name, parts := range raw {
		layout[models.ExamType(name)] = parts
	}
	if len(layout) == 0 {
		return nil, fmt.Errorf("exam layout %s defines no exam types", path)
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exam layout %s: %w", path, err)
	}
	return layout, nil
}
