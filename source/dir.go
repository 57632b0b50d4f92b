package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"wbc/block"
)

// DirSource reads posts from a directory of per-post JSON files named
// "{id}.json", each holding the wire shape produced by the WordPress block
// parser.
type DirSource struct {
	dir string
	log *zap.Logger
}

// postFile is the on-disk fixture shape.
type postFile struct {
	ID     int             `json:"id"`
	Title  string          `json:"title"`
	Blocks json.RawMessage `json:"blocks"`
}

func NewDirSource(dir string, log *zap.Logger) *DirSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirSource{dir: dir, log: log.Named("source")}
}

func (s *DirSource) PostByID(ctx context.Context, id int) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%d.json", id))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: post %d", ErrPostNotFound, id)
		}
		return nil, fmt.Errorf("%w: unable to read %s: %v", ErrFetch, path, err)
	}

	var pf postFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: unable to decode %s: %v", ErrFetch, path, err)
	}
	if pf.ID == 0 {
		pf.ID = id
	}

	blocks, err := block.ParseTree(pf.Blocks)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
	}

	s.log.Debug("Loaded post", zap.Int("id", pf.ID), zap.Int("blocks", len(blocks)))
	return &Post{ID: pf.ID, Title: pf.Title, Blocks: blocks}, nil
}

func (s *DirSource) PostIDs(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to list %s: %v", ErrFetch, s.dir, err)
	}

	var ids []int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
