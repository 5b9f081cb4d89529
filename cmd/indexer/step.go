package main

import (
	"context"
	"fmt"
	"log"

	"parking/internal/models"
	"parking/pkg/geo"
)

// IndexItem carries one minified document through the index pipeline.
type IndexItem struct {
	Key     string
	Spaces  []models.Space
	Located []models.LocatedSpace
	Skipped int
}

func NewIndexItem(key string, spaces []models.Space) *IndexItem {
	return &IndexItem{Key: key, Spaces: spaces}
}

// locateSpaces resolves every space's coordinates. Spaces without an id or
// with an unusable location are skipped.
func locateSpaces(_ context.Context, item *IndexItem) error {
	item.Located = make([]models.LocatedSpace, 0, len(item.Spaces))
	for _, sp := range item.Spaces {
		located, ok := locate(sp)
		if !ok {
			item.Skipped++
			continue
		}
		item.Located = append(item.Located, located)
	}
	return nil
}

func locate(sp models.Space) (models.LocatedSpace, bool) {
	id, ok := sp.SpaceID.Text()
	if !ok || id == "" {
		return models.LocatedSpace{}, false
	}
	coords, err := geo.ParseLatLng(sp.LatLng.Raw())
	if err != nil {
		return models.LocatedSpace{}, false
	}

	located := models.LocatedSpace{ID: id, Coordinates: coords}
	if rate, ok := sp.RateRange.Text(); ok {
		located.RateRange = &rate
		if price, ok := geo.FirstPrice(rate); ok {
			located.Price = &price
		}
	}
	if limit, ok := sp.TimeLimit.Text(); ok {
		located.TimeLimit = &limit
	}
	return located, true
}

type spaceUpserter interface {
	Upsert(ctx context.Context, sourceKey string, spaces []models.LocatedSpace) error
}

func persistSpaces(store spaceUpserter) func(ctx context.Context, item *IndexItem) error {
	return func(ctx context.Context, item *IndexItem) error {
		if err := store.Upsert(ctx, item.Key, item.Located); err != nil {
			return fmt.Errorf("failed to persist '%s': %w", item.Key, err)
		}
		return nil
	}
}

func reportItem(_ context.Context, item *IndexItem) error {
	log.Printf("Indexed '%s': %d located, %d skipped", item.Key, len(item.Located), item.Skipped)
	return nil
}
