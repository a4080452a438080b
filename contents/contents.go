// Package contents implements the filesystem-backed contents API. All paths
// are relative to a single notebook root directory; requests may never
// escape it.
package contents

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates the requested path does not exist under the root.
	ErrNotFound = errors.New("no such file or directory")
	// ErrOutsideRoot indicates the requested path escapes the notebook root.
	ErrOutsideRoot = errors.New("path outside notebook directory")
)

// Model is the API representation of a file, notebook, or directory.
type Model struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Type         string    `json:"type"` // "file", "notebook" or "directory"
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	Format       string    `json:"format,omitempty"`
	Content      any       `json:"content,omitempty"`
}

// Manager serves content models from a root directory.
type Manager struct {
	root string
}

// NewManager creates a manager rooted at dir, which must exist.
func NewManager(dir string) (*Manager, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("notebook directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("notebook directory %s is not a directory", dir)
	}
	return &Manager{root: dir}, nil
}

// Root returns the notebook root directory.
func (m *Manager) Root() string {
	return m.root
}

// Get returns the model for apiPath ("" or "/" is the root directory).
// Directory models include child listings; file models include content when
// includeContent is true.
func (m *Manager) Get(apiPath string, includeContent bool) (*Model, error) {
	fsPath, err := m.resolve(apiPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", apiPath, ErrNotFound)
		}
		return nil, err
	}

	model := m.baseModel(apiPath, info)

	if info.IsDir() {
		children, err := m.list(apiPath, fsPath)
		if err != nil {
			return nil, err
		}
		model.Format = "json"
		model.Content = children
		return model, nil
	}

	if includeContent {
		data, err := os.ReadFile(fsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", apiPath, err)
		}
		model.Format = "text"
		model.Content = string(data)
	}
	return model, nil
}

// Save writes content to apiPath, creating parent directories as needed,
// and returns the resulting model.
func (m *Manager) Save(apiPath, content string) (*Model, error) {
	fsPath, err := m.resolve(apiPath)
	if err != nil {
		return nil, err
	}
	if apiPath == "" {
		return nil, fmt.Errorf("cannot save to the root directory")
	}

	if err := os.MkdirAll(filepath.Dir(fsPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := os.WriteFile(fsPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", apiPath, err)
	}

	return m.Get(apiPath, false)
}

// Delete removes the file or empty directory at apiPath.
func (m *Manager) Delete(apiPath string) error {
	fsPath, err := m.resolve(apiPath)
	if err != nil {
		return err
	}
	if apiPath == "" {
		return fmt.Errorf("cannot delete the root directory")
	}

	if _, err := os.Stat(fsPath); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", apiPath, ErrNotFound)
	}
	return os.Remove(fsPath)
}

// list returns models for the direct children of a directory, sorted by
// name, without content.
func (m *Manager) list(apiPath, fsPath string) ([]*Model, error) {
	entries, err := os.ReadDir(fsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", apiPath, err)
	}

	models := make([]*Model, 0, len(entries))
	for _, entry := range entries {
		// Hidden files stay out of listings
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		models = append(models, m.baseModel(path.Join(apiPath, entry.Name()), info))
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func (m *Manager) baseModel(apiPath string, info os.FileInfo) *Model {
	model := &Model{
		Name:         path.Base(apiPath),
		Path:         apiPath,
		Size:         info.Size(),
		LastModified: info.ModTime().UTC(),
	}
	if apiPath == "" {
		model.Name = ""
	}

	switch {
	case info.IsDir():
		model.Type = "directory"
		model.Size = 0
	case strings.HasSuffix(info.Name(), ".ipynb"):
		model.Type = "notebook"
	default:
		model.Type = "file"
	}
	return model
}

// resolve maps an API path onto the filesystem, rejecting escapes.
func (m *Manager) resolve(apiPath string) (string, error) {
	cleaned := path.Clean("/" + apiPath)
	if cleaned == "/" {
		return m.root, nil
	}
	fsPath := filepath.Join(m.root, filepath.FromSlash(cleaned))
	if fsPath != m.root && !strings.HasPrefix(fsPath, m.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", apiPath, ErrOutsideRoot)
	}
	return fsPath, nil
}
