// Package project ties tasks, groups, availability and history into one
// scheduling context with cached schedules and forecasts.
package project

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/forecast/internal/errors"
	"github.com/felixgeelhaar/forecast/internal/plan"
)

// Definition is the document describing a project. It is read, never written.
type Definition struct {
	Name       string                       `json:"name" yaml:"name"`
	Start      string                       `json:"start" yaml:"start"` // YYYY-MM-DD
	Tasks      []plan.Task                  `json:"tasks" yaml:"tasks"`
	Groups     []plan.Group                 `json:"groups,omitempty" yaml:"groups,omitempty"`
	Schedules  map[string][]string          `json:"schedules" yaml:"schedules"`
	Accuracies map[string][]float64         `json:"accuracies,omitempty" yaml:"accuracies,omitempty"`
	Snapshots  map[string]map[string]string `json:"snapshots,omitempty" yaml:"snapshots,omitempty"` // day -> probability -> completion day
}

// Repository loads project definitions.
type Repository interface {
	Load(path string) (*Definition, error)
}

// FileRepository reads definitions from YAML or JSON files.
type FileRepository struct{}

// NewFileRepository creates a new file-based repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads a definition. Files ending in .json are decoded as JSON and
// everything else as YAML. Unknown fields are rejected.
func (r *FileRepository) Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read project file: %s", path), err)
	}

	format := "YAML"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "JSON"
	}

	def, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, errors.NewFileUnmarshalError(path, format, err)
	}
	return def, nil
}

// Decode reads one definition in the given format ("YAML" or "JSON").
func Decode(r io.Reader, format string) (*Definition, error) {
	var def Definition
	switch strings.ToUpper(format) {
	case "JSON":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return nil, err
		}
	case "YAML":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			if stderrors.Is(err, io.EOF) {
				return nil, stderrors.New("empty document")
			}
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: YAML, JSON)", format)
	}
	return &def, nil
}

var defaultRepository = NewFileRepository()

// LoadDefinition reads a definition using the file repository.
func LoadDefinition(path string) (*Definition, error) {
	return defaultRepository.Load(path)
}
