package indexer

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gitignore "github.com/sabhiram/go-gitignore"
)

// walker lists eligible images below a root directory.
type walker struct {
	root    string
	extSet  map[string]bool
	ignorer *gitignore.GitIgnore
}

func newWalker(root string, extensions []string, ignoreFile string) *walker {
	w := &walker{
		root:   root,
		extSet: make(map[string]bool, len(extensions)),
	}
	for _, ext := range extensions {
		// Normalize extension to have leading dot
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		w.extSet[strings.ToLower(ext)] = true
	}

	if ignoreFile != "" {
		ignorePath := filepath.Join(root, ignoreFile)
		if _, err := os.Stat(ignorePath); err == nil {
			gi, err := gitignore.CompileIgnoreFile(ignorePath)
			if err != nil {
				log.Warn("Failed to parse ignore file", "path", ignorePath, "error", err)
			} else {
				w.ignorer = gi
			}
		}
	}

	return w
}

// eligible reports whether the file name has a recognised image extension.
func (w *walker) eligible(name string) bool {
	return w.extSet[strings.ToLower(filepath.Ext(name))]
}

// Walk returns absolute paths of all eligible images in lexical order.
// Unreadable directories are logged and skipped.
func (w *walker) Walk() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			log.Warn("Error accessing path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			relPath = path
		}

		if d.IsDir() {
			if path != w.root && w.ignored(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if !w.eligible(d.Name()) || w.ignored(relPath) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (w *walker) ignored(relPath string) bool {
	return w.ignorer != nil && w.ignorer.MatchesPath(filepath.ToSlash(relPath))
}
