package media

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// sizeLadder lists the derived image variants in generation order. Widths
// follow the stock WordPress media settings. The thumbnail is a center crop,
// the rest keep aspect ratio.
var sizeLadder = []struct {
	name  string
	width int
	crop  bool
}{
	{"thumbnail", 150, true},
	{"medium", 300, false},
	{"large", 1024, false},
}

// derivedName matches files this importer produces itself, e.g.
// "photo-300x200.jpg". They are skipped on re-import.
var derivedName = regexp.MustCompile(`-\d+x\d+\.[A-Za-z0-9]+$`)

// ImportOptions controls an uploads directory import.
type ImportOptions struct {
	// UploadsDir is the directory scanned recursively for media files.
	UploadsDir string
	// BaseURL is the public URL the uploads directory is served under.
	BaseURL string
	// StartID is the ID assigned to the first imported file, subsequent
	// files count up in path order.
	StartID int
}

// ImportStats summarizes an import run.
type ImportStats struct {
	Scanned  int
	Imported int
	Skipped  int
}

// ImportUploads scans the uploads directory, catalogs every recognized media
// file and derives the named size variants for images. Derived files are
// written next to their originals using the "{name}-{w}x{h}{ext}" form.
// IDs are assigned sequentially in sorted path order, so repeated imports of
// an unchanged tree are stable.
func (s *Store) ImportUploads(ctx context.Context, opts ImportOptions) (*ImportStats, error) {
	if opts.StartID <= 0 {
		opts.StartID = 1
	}

	var paths []string
	err := filepath.WalkDir(opts.UploadsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || derivedName.MatchString(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to scan uploads %s: %w", opts.UploadsDir, err)
	}
	sort.Strings(paths)

	stats := &ImportStats{}
	id := opts.StartID
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Scanned++

		rec, err := s.importFile(path, opts, id)
		if err != nil {
			s.log.Warn("Skipping unimportable file", zap.String("path", path), zap.Error(err))
			stats.Skipped++
			continue
		}
		if rec == nil {
			stats.Skipped++
			continue
		}
		if err := s.Put(ctx, rec); err != nil {
			return stats, err
		}
		stats.Imported++
		id++
	}

	s.log.Info("Uploads import finished",
		zap.Int("scanned", stats.Scanned),
		zap.Int("imported", stats.Imported),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// importFile catalogs a single file. Unrecognized content is skipped with a
// nil record, images additionally get their size variant files.
func (s *Store) importFile(path string, opts ImportOptions, id int) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		s.log.Debug("Unrecognized file type", zap.String("path", path))
		return nil, nil
	}

	rel, err := filepath.Rel(opts.UploadsDir, path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	rec := &Record{
		ID:    id,
		URL:   joinURL(opts.BaseURL, rel),
		MIME:  kind.MIME.Value,
		Sizes: map[string]string{"full": joinURL(opts.BaseURL, rel)},
	}

	if !filetype.IsImage(data) {
		// audio, video and documents are cataloged without variants
		return rec, nil
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to decode image: %w", err)
	}

	for _, variant := range sizeLadder {
		if !variant.crop && img.Bounds().Dx() <= variant.width {
			continue // never upscale, the variant is simply absent
		}
		resized := resizeVariant(img, variant.width, variant.crop)
		outPath := variantPath(path, resized)
		if err := imaging.Save(resized, outPath); err != nil {
			return nil, fmt.Errorf("unable to write %s variant: %w", variant.name, err)
		}
		outRel, err := filepath.Rel(opts.UploadsDir, outPath)
		if err != nil {
			return nil, err
		}
		rec.Sizes[variant.name] = joinURL(opts.BaseURL, filepath.ToSlash(outRel))
	}
	return rec, nil
}

func resizeVariant(img image.Image, width int, crop bool) image.Image {
	if crop {
		return imaging.Thumbnail(img, width, width, imaging.Lanczos)
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// variantPath derives the on-disk name of a resized copy from the original
// path and the actual output dimensions.
func variantPath(original string, img image.Image) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	return fmt.Sprintf("%s-%dx%d%s", base, img.Bounds().Dx(), img.Bounds().Dy(), ext)
}
