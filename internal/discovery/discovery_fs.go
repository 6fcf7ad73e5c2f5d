package discovery

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileSystemDiscovery finds SDL files under a path. The path may name a
// single file or a directory, which is walked recursively.
type FileSystemDiscovery struct {
	root string
}

func NewFileSystemDiscovery(root string) (*FileSystemDiscovery, error) {
	if root == "" {
		return nil, errors.New("schema path cannot be empty")
	}
	if _, err := os.Stat(root); err != nil {
		return nil, errors.Wrapf(err, "schema path %q", root)
	}
	return &FileSystemDiscovery{root: root}, nil
}

func isSDL(name string) bool {
	switch filepath.Ext(name) {
	case ".graphql", ".graphqls", ".gql":
		return true
	}
	return false
}

// ListFiles implements Discovery. Names are relative to the root directory.
func (d *FileSystemDiscovery) ListFiles(ctx context.Context) ([]*SDLFile, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		content, err := os.ReadFile(d.root)
		if err != nil {
			return nil, err
		}
		return []*SDLFile{{Name: filepath.Base(d.root), Content: string(content)}}, nil
	}

	var files []*SDLFile
	err = filepath.WalkDir(d.root, func(path string, e os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if e.IsDir() || !isSDL(e.Name()) {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return errors.Wrapf(err, "relative path for %q", path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read %q", path)
		}
		files = append(files, &SDLFile{Name: filepath.ToSlash(rel), Content: string(content)})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %q", d.root)
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no GraphQL files found under %q", d.root)
	}
	return files, nil
}

// LoadPath is a convenience for Load over a FileSystemDiscovery.
func LoadPath(ctx context.Context, root string) (string, error) {
	d, err := NewFileSystemDiscovery(root)
	if err != nil {
		return "", err
	}
	return Load(ctx, d)
}
