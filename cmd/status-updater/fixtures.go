package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	statusupdater "github.com/goliatone/go-status-updater"
	"github.com/goliatone/go-status-updater/internal/content"
	"github.com/goliatone/go-status-updater/internal/domain"
)

type fixtureFile struct {
	Items      []fixtureItem    `json:"items" yaml:"items"`
	Permalinks map[string]int64 `json:"permalinks" yaml:"permalinks"`
}

type fixtureItem struct {
	ID     int64  `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Slug   string `json:"slug" yaml:"slug"`
	Title  string `json:"title" yaml:"title"`
	Status string `json:"status" yaml:"status"`
}

func seedFixtures(ctx context.Context, seeder content.Seeder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fixtures fixtureFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &fixtures)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fixtures)
	default:
		return fmt.Errorf("unsupported fixture format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for _, item := range fixtures.Items {
		status, err := domain.ParseStatus(item.Status)
		if err != nil {
			return fmt.Errorf("item %q: %w", item.Slug, err)
		}
		if _, err := seeder.Create(ctx, &statusupdater.Item{
			ID:     statusupdater.ItemID(item.ID),
			Type:   item.Type,
			Slug:   item.Slug,
			Title:  item.Title,
			Status: status,
		}); err != nil {
			return fmt.Errorf("item %q: %w", item.Slug, err)
		}
	}
	for path, id := range fixtures.Permalinks {
		if err := seeder.PutPermalink(ctx, path, statusupdater.ItemID(id)); err != nil {
			return fmt.Errorf("permalink %q: %w", path, err)
		}
	}
	return nil
}
