package schema

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/msabramo/simplestruct/record"
)

// listSchemaFiles returns the sorted list of *.toml files under dir.
func listSchemaFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".toml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir parses every *.toml schema file under dir in parallel and merges
// the declared types into one registry. Files merge in sorted path order, so
// the result is deterministic; a type name declared in two files is an error.
// Inherits references resolve per file, not across files.
func LoadDir(ctx context.Context, dir string) (*record.Registry, error) {
	files, err := listSchemaFiles(dir)
	if err != nil {
		return nil, err
	}
	reg := record.NewRegistry()
	if len(files) == 0 {
		return reg, nil
	}

	results := make([]map[string]*record.Type, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			built, err := parseFile(path)
			if err != nil {
				return err
			}
			results[i] = built
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, path := range files {
		if err := registerAll(path, results[i], reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
