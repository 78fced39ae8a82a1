package vfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/qiangli/dataworks/internal/api"
)

// FileSystem confines file operations to a single permitted root.
// Paths may be absolute (and must then lie under the root) or relative to the root.
// There is no removal operation.
type FileSystem interface {
	Root() string
	Resolve(string) (string, error)

	ReadFile(string) ([]byte, error)
	WriteFile(string, []byte) error
	Open(string) (*os.File, error)

	GetFileInfo(string) (*FileInfo, error)
	ListDirectory(string) ([]*FileInfo, error)
	Glob(dir, pattern string) ([]string, error)
}

type FileInfo struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"isDirectory"`
	Permissions string    `json:"permissions"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
}

type LocalFS struct {
	root string

	// root with symlinks evaluated
	realRoot string
}

// NewLocalFS returns a file system rooted at base, which must be an existing directory.
func NewLocalFS(base string) (*LocalFS, error) {
	if base == "" {
		return nil, api.NewConfigError("permitted root is not set")
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, api.Wrap(api.KindConfig, err, "invalid root %q", base)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, api.Wrap(api.KindConfig, err, "invalid root %q", base)
	}
	fi, err := os.Stat(real)
	if err != nil {
		return nil, api.Wrap(api.KindConfig, err, "invalid root %q", base)
	}
	if !fi.IsDir() {
		return nil, api.NewConfigError("root %q is not a directory", base)
	}
	return &LocalFS{
		root:     filepath.Clean(abs),
		realRoot: real,
	}, nil
}

func (s *LocalFS) Root() string {
	return s.root
}

// Resolve validates path against the root and returns its absolute form.
func (s *LocalFS) Resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", api.NewBadRequestError("path is required")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	path = filepath.Clean(path)

	if !within(s.root, path) {
		return "", api.NewAccessDeniedError("access denied: %s is outside %s", path, s.root)
	}

	// a symlink inside the root must not lead out of it
	if real, err := evalExisting(path); err == nil && !within(s.realRoot, real) {
		return "", api.NewAccessDeniedError("access denied: %s resolves outside %s", path, s.root)
	}
	return path, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// evalExisting evaluates symlinks of the longest existing prefix of path.
func evalExisting(path string) (string, error) {
	var rest []string
	p := path
	for {
		real, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(append([]string{real}, rest...)...), nil
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		rest = append([]string{filepath.Base(p)}, rest...)
		p = parent
	}
}

func (s *LocalFS) ReadFile(path string) ([]byte, error) {
	validPath, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(validPath)
}

// WriteFile writes content, creating parent directories as needed.
func (s *LocalFS) WriteFile(path string, content []byte) error {
	validPath, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(validPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(validPath, content, 0644)
}

func (s *LocalFS) Open(path string) (*os.File, error) {
	validPath, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(validPath)
}

func (s *LocalFS) GetFileInfo(path string) (*FileInfo, error) {
	validPath, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(validPath)
	if err != nil {
		return nil, err
	}
	return toFileInfo(validPath, info), nil
}

// ListDirectory returns the entries of path ordered by name.
func (s *LocalFS) ListDirectory(path string) ([]*FileInfo, error) {
	validPath, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(validPath)
	if err != nil {
		return nil, err
	}
	var result []*FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		result = append(result, toFileInfo(filepath.Join(validPath, entry.Name()), info))
	}
	return result, nil
}

// Glob matches pattern (doublestar syntax, e.g. "**/*.md") under dir and
// returns slash separated paths relative to dir, sorted.
func (s *LocalFS) Glob(dir, pattern string) ([]string, error) {
	validPath, err := s.Resolve(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(validPath); err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(os.DirFS(validPath), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func toFileInfo(path string, info fs.FileInfo) *FileInfo {
	return &FileInfo{
		Name:        info.Name(),
		Path:        path,
		IsDirectory: info.IsDir(),
		Permissions: fmt.Sprintf("%o", info.Mode().Perm()),
		Size:        info.Size(),
		Modified:    info.ModTime(),
	}
}
