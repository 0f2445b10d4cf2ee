package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"stitch/internal/source"
)

// listSourceFiles возвращает отсортированный список файлов с подходящими
// расширениями в директории
func listSourceFiles(dir string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ScanDir scans every matching file under dir in parallel. Files are loaded
// into the FileSet up front (sequentially), then scanned with up to jobs
// workers; jobs <= 0 means GOMAXPROCS. Results come back in path order.
func ScanDir(ctx context.Context, dir string, exts []string, jobs int) (*source.FileSet, []*FileReport, error) {
	files, err := listSourceFiles(dir, exts)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSet()
	ids := make([]source.FileID, 0, len(files))
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	reports := make([]*FileReport, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = ScanFile(fileSet.Get(id))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fileSet, reports, nil
}
