package loader

import (
	"context"
	"strings"

	"storefront-proxy/internal/dataloader"
	"storefront-proxy/internal/model"
	"storefront-proxy/internal/vtex"
)

// SkuBatchSize is the most sku ids one search query may carry.
const SkuBatchSize = 99

// ProductSearcher runs product searches.
type ProductSearcher interface {
	Products(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error)
}

// SkuLoader resolves a product locator (selected facets carrying an "id"
// facet) to the sku and its parent product.
type SkuLoader = dataloader.Loader[[]model.SelectedFacet, vtex.EnhancedSku]

// NewSkuLoader creates a SKU loader with the given batch ceiling.
func NewSkuLoader(search ProductSearcher, batchSize int, opts ...dataloader.Option[[]model.SelectedFacet]) *SkuLoader {
	opts = append([]dataloader.Option[[]model.SelectedFacet]{
		dataloader.WithMaxBatch[[]model.SelectedFacet](batchSize),
		dataloader.WithCacheKey(facetsKey),
	}, opts...)
	return dataloader.New(skuBatch(search), opts...)
}

func skuBatch(search ProductSearcher) dataloader.BatchFunc[[]model.SelectedFacet, vtex.EnhancedSku] {
	return func(ctx context.Context, keys [][]model.SelectedFacet) ([]vtex.EnhancedSku, error) {
		ids := make([]string, len(keys))
		for i, facets := range keys {
			id, ok := model.FindFacet(facets, "id")
			if !ok {
				return nil, model.NewBadRequestError("product locator is missing the id facet")
			}
			ids[i] = id
		}

		result, err := search.Products(ctx, vtex.SearchArgs{
			Query: "sku:" + strings.Join(ids, ";"),
			Page:  0,
			Count: len(ids),
		})
		if err != nil {
			return nil, err
		}

		byID := make(map[string]vtex.EnhancedSku)
		for i := range result.Products {
			product := &result.Products[i]
			for _, sku := range product.Skus {
				byID[sku.ID] = vtex.Enhance(sku, product)
			}
		}

		skus := make([]vtex.EnhancedSku, len(ids))
		var missing []string
		for i, id := range ids {
			sku, ok := byID[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			skus[i] = sku
		}
		if len(missing) > 0 {
			return nil, model.NewMissingSkusError(missing)
		}
		return skus, nil
	}
}

// facetsKey serializes a locator so identical locators share one slot.
func facetsKey(facets []model.SelectedFacet) string {
	var b strings.Builder
	for _, f := range facets {
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
		b.WriteByte(';')
	}
	return b.String()
}
