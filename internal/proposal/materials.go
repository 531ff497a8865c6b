// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/logging"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// MaterialFile names a file to load. A zero Kind is inferred from the file
// name with KindForPath.
type MaterialFile struct {
	Path string
	Kind types.MaterialKind
}

// supportedExt lists the extensions read as plain text.
var supportedExt = map[string]bool{".md": true, ".markdown": true, ".txt": true}

// KindForPath guesses the material kind from the file name: names
// mentioning 开题 or proposal are proposals, 实验 or experiment are
// experiment designs, and anything else is a reference paper.
func KindForPath(path string) types.MaterialKind {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "开题") || strings.Contains(name, "proposal"):
		return types.MaterialProposal
	case strings.Contains(name, "实验") || strings.Contains(name, "experiment"):
		return types.MaterialExperiment
	default:
		return types.MaterialPaper
	}
}

// Errors returned by LoadMaterialsFrom.
var (
	ErrNoMaterialsRoot = errors.New("material files are disabled: no materials root configured")
	ErrOutsideRoot     = errors.New("material path is outside the materials root")
)

// LoadMaterials reads the given files in order. Files with an unsupported
// extension and empty files are skipped with a warning; a file that cannot
// be read is an error.
func LoadMaterials(files []MaterialFile, log *zap.Logger) ([]types.Material, error) {
	return loadMaterials(files, os.ReadFile, log)
}

// LoadMaterialsFrom is LoadMaterials confined to root. Relative paths resolve
// against root and absolute paths must lie under it. Symlinks cannot leave
// root. An empty root rejects every file.
func LoadMaterialsFrom(root string, files []MaterialFile, log *zap.Logger) ([]types.Material, error) {
	var (
		abs string
		r   *os.Root
	)
	defer func() {
		if r != nil {
			_ = r.Close()
		}
	}()

	read := func(path string) ([]byte, error) {
		if root == "" {
			return nil, ErrNoMaterialsRoot
		}
		if r == nil {
			var err error
			if abs, err = filepath.Abs(root); err != nil {
				return nil, fmt.Errorf("resolving materials root: %w", err)
			}
			if r, err = os.OpenRoot(abs); err != nil {
				return nil, fmt.Errorf("opening materials root: %w", err)
			}
		}

		rel := filepath.Clean(path)
		if filepath.IsAbs(rel) {
			var err error
			if rel, err = filepath.Rel(abs, rel); err != nil {
				return nil, ErrOutsideRoot
			}
		}
		if !filepath.IsLocal(rel) {
			return nil, ErrOutsideRoot
		}
		return fs.ReadFile(r.FS(), filepath.ToSlash(rel))
	}
	return loadMaterials(files, read, log)
}

func loadMaterials(files []MaterialFile, read func(string) ([]byte, error), log *zap.Logger) ([]types.Material, error) {
	log = logging.OrNop(log)

	var out []types.Material
	for _, f := range files {
		if f.Path == "" {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Path))
		if !supportedExt[ext] {
			log.Warn("skipping material with unsupported format", zap.String("path", f.Path), zap.String("ext", ext))
			continue
		}

		data, err := read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading material %s: %w", f.Path, err)
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			log.Warn("skipping empty material", zap.String("path", f.Path))
			continue
		}

		kind := f.Kind
		if kind == 0 {
			kind = KindForPath(f.Path)
		}
		out = append(out, types.Material{Path: f.Path, Kind: kind, Content: content})
	}
	return out, nil
}

// splitMaterials partitions materials by kind, keeping input order.
func splitMaterials(ms []types.Material) (proposals, experiments, papers []types.Material) {
	for _, m := range ms {
		switch m.Kind {
		case types.MaterialProposal:
			proposals = append(proposals, m)
		case types.MaterialExperiment:
			experiments = append(experiments, m)
		default:
			papers = append(papers, m)
		}
	}
	return proposals, experiments, papers
}
