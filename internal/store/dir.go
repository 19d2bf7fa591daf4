package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/synthmed/radgen/internal/image"
	"github.com/synthmed/radgen/internal/log"
)

const createAttempts = 16

// DirStore writes artifacts into a local directory, one PNG plus one JSON
// sidecar per image. File creation uses O_EXCL so concurrent writers can
// share a destination without clobbering each other.
type DirStore struct {
	Dir string

	now      func() time.Time
	disambig func() string
}

func NewDirStore(dir string) *DirStore {
	return &DirStore{
		Dir:      dir,
		now:      time.Now,
		disambig: func() string { return uuid.NewString()[:8] },
	}
}

func (s *DirStore) Store(ctx context.Context, art image.Artifact) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("store").With("dir", s.Dir)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s_%s_%s",
		art.Request.Modality, art.Request.Region, s.now().UTC().Format("20060102T150405"))

	path, err := s.create(base, ".png", art.Data)
	if err != nil {
		return "", err
	}

	meta, err := json.MarshalIndent(metadataFor(art), "", "  ")
	if err != nil {
		return "", err
	}
	sidecar := path[:len(path)-len(".png")] + ".json"
	if err := writeExcl(sidecar, meta); err != nil {
		return "", err
	}

	log.Info("stored artifact", "path", path, "seed", art.Seed)
	return path, nil
}

func (s *DirStore) Put(ctx context.Context, params PutParams) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("store").With("dir", s.Dir)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(params.Name)
	path, err := s.create(params.Name[:len(params.Name)-len(ext)], ext, params.Data)
	if err != nil {
		return "", err
	}
	log.Info("wrote file", "path", path)
	return path, nil
}

// create picks a unique name under the destination. Collisions re-roll the
// disambiguator; names never reuse an existing file.
func (s *DirStore) create(base, ext string, data []byte) (string, error) {
	for i := 0; i < createAttempts; i++ {
		path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s%s", base, s.disambig(), ext))
		err := writeExcl(path, data)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("could not find a free name for %s%s after %d attempts", base, ext, createAttempts)
}

func writeExcl(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
