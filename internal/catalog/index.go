package catalog

import (
	"sort"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/util"
)

// Index holds the active slice of a catalog snapshot, keyed for the match
// tiers. Items is sorted by id so fuzzy tie-breaking is reproducible under
// catalog reordering.
type Index struct {
	Items            []internal.CatalogItem
	ByID             map[string]internal.CatalogItem
	ByBarcode        map[string]internal.CatalogItem
	NormalizedByID   map[string]string
	NormalizedByName map[string][]internal.CatalogItem
}

// BuildIndex filters the snapshot down to active items and indexes them.
// Inactive and sold-out items never participate in matching.
func BuildIndex(items []internal.CatalogItem) *Index {
	idx := &Index{
		ByID:             map[string]internal.CatalogItem{},
		ByBarcode:        map[string]internal.CatalogItem{},
		NormalizedByID:   map[string]string{},
		NormalizedByName: map[string][]internal.CatalogItem{},
	}

	for _, item := range items {
		if !item.Active() {
			continue
		}
		idx.Items = append(idx.Items, item)
	}
	sort.Slice(idx.Items, func(i, j int) bool { return idx.Items[i].ID < idx.Items[j].ID })

	for _, item := range idx.Items {
		idx.ByID[item.ID] = item

		normName := util.NormalizeProductName(item.Name)
		idx.NormalizedByID[item.ID] = normName
		idx.NormalizedByName[normName] = append(idx.NormalizedByName[normName], item)

		if item.Barcode == nil {
			continue
		}
		code := util.NormalizeBarcode(*item.Barcode)
		if code == "" {
			continue
		}
		if _, exists := idx.ByBarcode[code]; !exists {
			idx.ByBarcode[code] = item
		}
	}

	return idx
}
