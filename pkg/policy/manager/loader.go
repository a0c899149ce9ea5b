package manager

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"stellar-hq/callisto/pkg/cpl/parser"
	"stellar-hq/callisto/pkg/policy/store"
)

// Loader builds a policy set from a directory of policy documents.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With("component", "policy.loader")}
}

// LoadDir parses every .yaml/.yml file under dir (recursively, lexical
// order) and folds the statements into a fresh policy set. The first failing
// file aborts the whole load: the caller never sees a partially loaded set.
func (l *Loader) LoadDir(dir string) (*store.PolicySet, error) {
	files, err := policyFiles(dir)
	if err != nil {
		return nil, err
	}

	set := store.New()
	for _, path := range files {
		doc, err := parser.ParseFile(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		for _, static := range doc.Statics {
			if err := set.AddStatic(static); err != nil {
				return nil, &LoadError{Path: path, Err: err}
			}
		}
		for _, tmpl := range doc.Templates {
			if err := set.AddTemplate(tmpl); err != nil {
				return nil, &LoadError{Path: path, Err: err}
			}
		}
		l.logger.Debug("loaded policy file", "path", path, "statements", doc.Len())
	}
	return set, nil
}

func policyFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		switch filepath.Ext(name) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan policy directory %q: %w", dir, err)
	}
	return files, nil
}
