package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// catalogSchema describes one bucket file: a non-empty object of instance key to
// instance object, each carrying a string id.
var catalogSchema = map[string]any{
	"type":          "object",
	"minProperties": 1,
	"additionalProperties": map[string]any{
		"type":     "object",
		"required": []any{"id"},
		"properties": map[string]any{
			"id": map[string]any{"type": "string", "minLength": 1},
		},
	},
}

const catalogSchemaURL = "schema://content-catalog.json"

// ContentStore reads catalogs from <root>/<examType>/teil<part>.json. Successful loads
// are kept in memory; content is immutable at runtime so nothing is invalidated.
type ContentStore struct {
	root   string
	schema *jsonschema.Schema

	mu    sync.RWMutex
	cache map[string]models.Catalog
}

func NewContentStore(root string) (*ContentStore, error) {
	// The compiler wants a decoded JSON value, not Go literals.
	defBytes, err := json.Marshal(catalogSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog schema: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse catalog schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(catalogSchemaURL, def); err != nil {
		return nil, fmt.Errorf("add catalog schema: %w", err)
	}
	schema, err := c.Compile(catalogSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	return &ContentStore{
		root:   root,
		schema: schema,
		cache:  make(map[string]models.Catalog),
	}, nil
}

var _ repositories.ContentRepository = (*ContentStore)(nil)

// PartPath returns the file backing (examType, part).
func (s *ContentStore) PartPath(examType models.ExamType, part int) string {
	return filepath.Join(s.root, string(examType), fmt.Sprintf("teil%d.json", part))
}

func (s *ContentStore) LoadPart(ctx context.Context, examType models.ExamType, part int) (models.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.PartPath(examType, part)

	s.mu.RLock()
	catalog, ok := s.cache[path]
	s.mu.RUnlock()
	if ok {
		return catalog, nil
	}

	catalog, err := s.readCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("%s part %d: %w", examType, part, err)
	}

	s.mu.Lock()
	s.cache[path] = catalog
	s.mu.Unlock()

	return catalog, nil
}

func (s *ContentStore) readCatalog(path string) (models.Catalog, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", repositories.ErrContentUnavailable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrContentUnavailable, err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in %s: %v", repositories.ErrContentUnavailable, path, err)
	}
	if err := s.schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %s failed schema validation: %v", repositories.ErrContentUnavailable, path, err)
	}

	var catalog models.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrContentUnavailable, err)
	}
	return catalog, nil
}
