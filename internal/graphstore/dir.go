package graphstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/fsutil"
	"github.com/specialistvlad/pathfinder/internal/graph"
)

// Dir serves graph files from a directory tree. The id of a graph is its
// file name without extension; "graphs/montreal.json" is "montreal". Files
// are read on every call, so Dir is usually wrapped in a Cache.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root. The directory must exist.
func NewDir(root string) (*Dir, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not open graph directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("graph directory %s is not a directory", root)
	}
	return &Dir{Root: root}, nil
}

// Graph implements Source.
func (d *Dir) Graph(ctx context.Context, id string) (*graph.Graph, error) {
	path, err := d.find(id)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Decoding graph file.", "graph", id, "path", path)
	return graph.DecodeFile(path)
}

// Info implements Catalog. Only the id and modification time are reported.
func (d *Dir) Info(_ context.Context, id string) (Info, error) {
	path, err := d.find(id)
	if err != nil {
		return Info{}, err
	}
	return d.info(path)
}

// List implements Catalog.
func (d *Dir) List(_ context.Context) ([]Info, error) {
	files, err := fsutil.FindFilesByExtension(d.Root, graph.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("could not list graph directory: %w", err)
	}
	out := make([]Info, 0, len(files))
	for _, path := range files {
		info, err := d.info(path)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Put writes g as <root>/<id>.json.
func (d *Dir) Put(ctx context.Context, id string, g *graph.Graph) (Info, error) {
	if err := validID(id); err != nil {
		return Info{}, err
	}
	path := filepath.Join(d.Root, id+".json")
	f, err := os.Create(path)
	if err != nil {
		return Info{}, fmt.Errorf("could not create graph file: %w", err)
	}
	if err := graph.Encode(f, graph.FormatJSON, g); err != nil {
		f.Close()
		return Info{}, fmt.Errorf("could not write graph file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Info{}, err
	}
	ctxlog.FromContext(ctx).Debug("Graph file written.", "graph", id, "path", path)

	info, err := d.info(path)
	if err != nil {
		return Info{}, err
	}
	info.NodeCount, info.EdgeCount, info.Bounds = g.NodeCount(), g.EdgeCount(), g.Bounds()
	return info, nil
}

// Delete removes the file backing id.
func (d *Dir) Delete(_ context.Context, id string) error {
	path, err := d.find(id)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// find returns the first file, in lexical order, whose name without
// extension is id.
func (d *Dir) find(id string) (string, error) {
	if err := validID(id); err != nil {
		return "", &NotFoundError{ID: id}
	}
	files, err := fsutil.FindFilesByExtension(d.Root, graph.Extensions...)
	if err != nil {
		return "", fmt.Errorf("could not list graph directory: %w", err)
	}
	for _, path := range files {
		if fsutil.TrimExt(path) == id {
			return path, nil
		}
	}
	return "", &NotFoundError{ID: id}
}

func (d *Dir) info(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{ID: fsutil.TrimExt(path), CreatedAt: fi.ModTime().UTC()}, nil
}

// validID rejects ids that could escape the root directory.
func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid graph id %q", id)
	}
	return nil
}
