package vtex

import (
	"strings"

	"storefront-proxy/internal/model"
)

// DefaultImage is shown for skus and products without pictures.
var DefaultImage = Image{
	Name:  strPtr("image"),
	Value: "https://storecomponents.vtexassets.com/assets/faststore/images/image___117a6d3e229a96ad0e0d0876352566e2.svg",
}

// legacyImageHost is rewritten to the asset CDN host.
const (
	legacyImageHost = "vteximg.com.br"
	assetsHost      = "vtexassets.com"
)

// ToOrderSnapshot converts an order form to the platform-neutral snapshot
// consumed by cart reconciliation.
func ToOrderSnapshot(form *OrderForm) *model.OrderSnapshot {
	snap := &model.OrderSnapshot{
		ID:           form.OrderFormID,
		SalesChannel: form.SalesChannel,
		Items:        make([]model.OrderItem, len(form.Items)),
		Messages:     make([]model.OrderMessage, len(form.Messages)),
	}
	for i, item := range form.Items {
		snap.Items[i] = model.OrderItem{
			UniqueID:        item.UniqueID,
			ID:              item.ID,
			Name:            item.Name,
			Seller:          item.Seller,
			Quantity:        item.Quantity,
			ListPrice:       item.ListPrice,
			SellingPrice:    item.SellingPrice,
			Availability:    item.Availability,
			PriceValidUntil: item.PriceValidUntil,
		}
	}
	for i, msg := range form.Messages {
		snap.Messages[i] = model.OrderMessage{Code: msg.Code, Text: msg.Text, Status: msg.Status}
	}
	return snap
}

// ProductSlug is the storefront slug of a sku: "<linkText>-<skuId>".
// The sku id is always the last dash separated segment.
func ProductSlug(link, skuID string) string {
	return link + "-" + skuID
}

// ProductPath is the storefront path of a sku's product page.
func ProductPath(link, skuID string) string {
	return "/" + ProductSlug(link, skuID) + "/p"
}

// ToProduct converts an enhanced sku to a storefront product. Variants of
// the parent product are included one level deep.
func ToProduct(sku EnhancedSku) model.Product {
	p := toProduct(sku)
	if sku.IsVariantOf != nil {
		parent := sku.IsVariantOf
		group := &model.ProductGroup{
			ProductGroupID: parent.Product,
			Name:           parent.Name,
			HasVariant:     make([]model.Product, len(parent.Skus)),
		}
		for i, variant := range parent.Skus {
			group.HasVariant[i] = toProduct(Enhance(variant, parent))
		}
		p.IsVariantOf = group
	}
	return p
}

func toProduct(sku EnhancedSku) model.Product {
	parent := sku.IsVariantOf
	if parent == nil {
		parent = &Product{}
	}

	name := sku.Name
	if name == "" {
		name = parent.Name
	}

	return model.Product{
		ProductID:      sku.ID,
		SKU:            sku.ID,
		Name:           name,
		Description:    parent.Description,
		Slug:           ProductSlug(parent.Link, sku.ID),
		GTIN:           deref(sku.Reference),
		Brand:          model.Brand{Name: parent.Brand},
		Image:          toImages(sku.Images, parent.Images),
		Seo:            model.Seo{Title: parent.Name, Description: parent.Description},
		BreadcrumbList: productBreadcrumb(parent, sku.ID),
	}
}

// toImages prefers sku images, then product images, then the default image.
func toImages(skuImages, productImages []Image) []model.Image {
	images := skuImages
	if len(images) == 0 {
		images = productImages
	}
	if len(images) == 0 {
		images = []Image{DefaultImage}
	}

	out := make([]model.Image, len(images))
	for i, img := range images {
		out[i] = model.Image{
			AlternateName: deref(img.Name),
			URL:           strings.Replace(img.Value, legacyImageHost, assetsHost, 1),
		}
	}
	return out
}

// productBreadcrumb lists the product's category lineages, deepest first,
// followed by the product page itself.
func productBreadcrumb(parent *Product, skuID string) model.BreadcrumbList {
	trees := parent.CategoryTrees
	items := make([]model.ListItem, 0, len(trees)+1)
	for i := len(trees) - 1; i >= 0; i-- {
		names := trees[i].CategoryNames
		if len(names) == 0 {
			continue
		}
		items = append(items, model.ListItem{
			Name:     names[len(names)-1],
			Item:     "/" + strings.ToLower(strings.Join(names, "/")),
			Position: len(items) + 1,
		})
	}
	items = append(items, model.ListItem{
		Name:     parent.Name,
		Item:     ProductPath(parent.Link, skuID),
		Position: len(items) + 1,
	})
	return model.BreadcrumbList{ItemListElement: items, NumberOfItems: len(items)}
}

// ToPricedOffer converts a simulated item to a storefront offer.
func ToPricedOffer(item SimulationItem) model.PricedOffer {
	return model.PricedOffer{
		Availability:    model.AvailabilityURL(item.Availability),
		ItemCondition:   model.NewCondition,
		ListPrice:       model.FromCents(item.ListPrice),
		Price:           model.FromCents(item.SellingPrice),
		SellingPrice:    model.FromCents(item.SellingPrice),
		PriceValidUntil: item.PriceValidUntil,
		Quantity:        item.Quantity,
		Seller:          model.Organization{Identifier: item.Seller},
	}
}

// ToAggregateOffer summarizes the simulated offers of one product. High and
// low prices are selling prices; an empty simulation prices at zero.
func ToAggregateOffer(sim *Simulation) *model.AggregateOffer {
	agg := &model.AggregateOffer{
		OfferCount: len(sim.Items),
		Offers:     make([]model.PricedOffer, len(sim.Items)),
	}
	if len(sim.Items) == 0 {
		return agg
	}

	high, low := sim.Items[0].SellingPrice, sim.Items[0].SellingPrice
	for i, item := range sim.Items {
		high = max(high, item.SellingPrice)
		low = min(low, item.SellingPrice)
		agg.Offers[i] = ToPricedOffer(item)
	}
	agg.HighPrice = model.FromCents(high)
	agg.LowPrice = model.FromCents(low)
	return agg
}

// ToFacets converts search attributes to storefront facets. Text attributes
// are boolean facets; everything else is a range rendered "<from>-to-<to>".
func ToFacets(attrs []Attribute) []model.Facet {
	facets := make([]model.Facet, len(attrs))
	for i, attr := range attrs {
		typ := model.FacetRange
		if attr.Type == "text" {
			typ = model.FacetBoolean
		}

		values := make([]model.FacetValue, len(attr.Values))
		for j, v := range attr.Values {
			value := v.From + "-to-" + v.To
			if v.Key != nil {
				value = *v.Key
			}
			label := "unknown"
			if v.Label != nil {
				label = *v.Label
			}
			values[j] = model.FacetValue{
				Value:    value,
				Label:    label,
				Selected: v.Active,
				Quantity: v.Count,
			}
		}

		facets[i] = model.Facet{Key: attr.Key, Label: attr.Label, Type: typ, Values: values}
	}
	return facets
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
