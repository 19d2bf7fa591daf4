package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/samber/lo"
	"github.com/synthmed/radgen/internal/log"
	"github.com/synthmed/radgen/internal/store"
	"golang.org/x/sync/errgroup"
)

// Generator builds an RSS feed from the sidecar records in an output
// directory, so an archive of generated artifacts can be followed.
type Generator struct {
	Dir     string
	BaseURL string // optional; item links are relative paths without it
}

func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed").With("dir", g.Dir)
	log.Info("generating rss feed")

	entries, err := os.ReadDir(g.Dir)
	if err != nil {
		return nil, err
	}
	sidecars := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && strings.HasSuffix(e.Name(), ".json")
	})

	feed := feeds.Feed{
		Title:       "radgen",
		Description: "Synthetic medical imaging artifacts",
		Link:        &feeds.Link{Href: g.BaseURL},
		Updated:     time.Now(),
	}

	items := make(chan *feeds.Item)
	done := make(chan struct{})
	go func() {
		for i := range items {
			feed.Add(i)
		}
		close(done)
	}()

	group, ctx := errgroup.WithContext(ctx)
	for _, name := range sidecars {
		name := name
		group.Go(func() error {
			item, err := g.itemFor(name)
			if err != nil {
				return err
			}
			select {
			case items <- item:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	if err := group.Wait(); err != nil {
		close(items)
		<-done
		return nil, err
	}
	close(items)
	<-done

	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Updated.Before(b.Updated)
	})
	rss, err := feed.ToRss()
	return []byte(rss), err
}

func (g *Generator) itemFor(name string) (*feeds.Item, error) {
	data, err := os.ReadFile(filepath.Join(g.Dir, name))
	if err != nil {
		return nil, err
	}
	var meta store.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing sidecar %s: %w", name, err)
	}

	imageName := strings.TrimSuffix(name, ".json") + ".png"
	href := imageName
	if g.BaseURL != "" {
		href = strings.TrimSuffix(g.BaseURL, "/") + "/" + imageName
	}
	return &feeds.Item{
		Title:       fmt.Sprintf("%s:%s:%d", meta.Modality, meta.Region, meta.Seed),
		Link:        &feeds.Link{Href: href},
		Description: meta.Prompt,
		Updated:     meta.CreatedAt,
	}, nil
}
