package gateway

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilterFile is one filter document found in the directory
type FilterFile struct {
	Name     string
	Path     string
	Contents string
}

// Gateway reads and writes filter documents in one directory
type Gateway struct {
	directory string
	extension string
}

// New creates a gateway for dir; ext defaults to ".filter"
func New(dir, ext string) *Gateway {
	if ext == "" {
		ext = ".filter"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Gateway{directory: dir, extension: ext}
}

// Directory returns the filter directory
func (g *Gateway) Directory() string {
	return g.directory
}

// pathChars cannot appear in an exported file name. Filter names come from
// document headers, including downloaded ones.
var pathChars = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// FileName turns a filter name into its file name. Only the first space is
// replaced, matching files exported by earlier versions.
func (g *Gateway) FileName(filterName string) string {
	name := strings.Replace(filterName, " ", "_", 1)
	return pathChars.Replace(name) + g.extension
}

// PathFor returns where a filter with the given name is exported
func (g *Gateway) PathFor(filterName string) string {
	return filepath.Join(g.Directory(), g.FileName(filterName))
}

// WriteFilterFile writes contents to path, creating parent directories
func (g *Gateway) WriteFilterFile(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Export writes a document under the filter's file name and returns its path
func (g *Gateway) Export(filterName, contents string) (string, error) {
	path := g.PathFor(filterName)
	return path, g.WriteFilterFile(path, contents)
}

// ListFilterFiles reads every file with the gateway's extension, sorted by name
func (g *Gateway) ListFilterFiles() ([]FilterFile, error) {
	dir := g.Directory()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []FilterFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), g.extension) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		files = append(files, FilterFile{
			Name:     e.Name(),
			Path:     path,
			Contents: string(data),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// IsFilterFile reports whether path has the gateway's extension
func (g *Gateway) IsFilterFile(path string) bool {
	return strings.HasSuffix(path, g.extension)
}
