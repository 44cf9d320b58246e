package loader

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-proxy/internal/adapter"
	"storefront-proxy/internal/model"
	"storefront-proxy/internal/session"
	"storefront-proxy/internal/vtex"
)

const testWait = 20 * time.Millisecond

func idFacets(id string) []model.SelectedFacet {
	return []model.SelectedFacet{{Key: "id", Value: id}}
}

// searchFor returns a ProductsFunc answering every sku in known, grouped
// into one product per entry.
func searchFor(known map[string][]string) func(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error) {
	return func(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error) {
		var result vtex.ProductSearchResult
		for productID, skuIDs := range known {
			p := vtex.Product{ID: productID, Product: productID, Name: "Product " + productID, Link: "product-" + productID}
			for _, id := range skuIDs {
				p.Skus = append(p.Skus, vtex.Sku{ID: id, Name: "Sku " + id})
			}
			result.Products = append(result.Products, p)
		}
		return &result, nil
	}
}

func TestSkuLoader_MissingIDFailsBeforeSearch(t *testing.T) {
	calls := 0
	mock := &adapter.Mock{
		ProductsFunc: func(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error) {
			calls++
			return &vtex.ProductSearchResult{}, nil
		},
	}
	l := NewSkuLoader(mock, SkuBatchSize)

	_, err := l.Load(context.Background(), []model.SelectedFacet{{Key: "slug", Value: "chair-1"}})()
	if !errors.Is(err, model.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "BAD_REQUEST" {
		t.Errorf("err = %v, want BAD_REQUEST", err)
	}
	if calls != 0 {
		t.Errorf("search called %d times, want 0", calls)
	}
}

func TestSkuLoader_CoalescesIntoOneQuery(t *testing.T) {
	var (
		mu   sync.Mutex
		args []vtex.SearchArgs
	)
	search := searchFor(map[string][]string{"p1": {"1", "2"}, "p2": {"3"}})
	mock := &adapter.Mock{
		ProductsFunc: func(ctx context.Context, a vtex.SearchArgs) (*vtex.ProductSearchResult, error) {
			mu.Lock()
			args = append(args, a)
			mu.Unlock()
			return search(ctx, a)
		},
	}
	l := NewFactory(mock, mock, Config{Wait: testWait}).New()
	ctx := context.Background()

	t1 := l.Sku(ctx).Load(ctx, idFacets("1"))
	t2 := l.Sku(ctx).Load(ctx, idFacets("2"))
	t3 := l.Sku(ctx).Load(ctx, idFacets("3"))

	for i, thunk := range []func() (vtex.EnhancedSku, error){t1, t2, t3} {
		sku, err := thunk()
		if err != nil {
			t.Fatalf("thunk %d: %v", i, err)
		}
		if want := []string{"1", "2", "3"}[i]; sku.ID != want {
			t.Errorf("thunk %d = sku %s, want %s", i, sku.ID, want)
		}
		if sku.IsVariantOf == nil {
			t.Errorf("thunk %d has no parent product", i)
		}
	}

	if len(args) != 1 {
		t.Fatalf("search called %d times, want 1", len(args))
	}
	if args[0].Query != "sku:1;2;3" || args[0].Page != 0 || args[0].Count != 3 {
		t.Errorf("args = %+v", args[0])
	}
}

func TestSkuLoader_ParentBackReference(t *testing.T) {
	mock := &adapter.Mock{ProductsFunc: searchFor(map[string][]string{"p1": {"1", "2"}})}
	l := NewSkuLoader(mock, SkuBatchSize)
	ctx := context.Background()

	skus, err := l.LoadMany(ctx, [][]model.SelectedFacet{idFacets("1"), idFacets("2")})
	if err != nil {
		t.Fatal(err)
	}
	if skus[0].IsVariantOf != skus[1].IsVariantOf {
		t.Error("skus of one product should share the parent")
	}
	if skus[0].IsVariantOf.Name != "Product p1" {
		t.Errorf("parent = %+v", skus[0].IsVariantOf)
	}
}

func TestSkuLoader_MissingSkusNamed(t *testing.T) {
	mock := &adapter.Mock{ProductsFunc: searchFor(map[string][]string{"p1": {"1"}})}
	l := NewSkuLoader(mock, SkuBatchSize)
	ctx := context.Background()

	t1 := l.Load(ctx, idFacets("1"))
	t2 := l.Load(ctx, idFacets("2"))
	t3 := l.Load(ctx, idFacets("3"))

	for _, thunk := range []func() (vtex.EnhancedSku, error){t1, t2, t3} {
		_, err := thunk()
		if !errors.Is(err, model.ErrIntegrity) {
			t.Fatalf("err = %v, want ErrIntegrity", err)
		}
		if !strings.Contains(err.Error(), "2,3") {
			t.Errorf("err = %v, want both missing ids", err)
		}
	}
}

func TestSkuLoader_SplitsAtCeiling(t *testing.T) {
	var (
		mu     sync.Mutex
		counts []int
	)
	mock := &adapter.Mock{
		ProductsFunc: func(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error) {
			ids := strings.Split(strings.TrimPrefix(args.Query, "sku:"), ";")
			mu.Lock()
			counts = append(counts, len(ids))
			mu.Unlock()
			return searchFor(map[string][]string{"p": ids})(ctx, args)
		},
	}
	l := NewFactory(mock, mock, Config{Wait: testWait}).New()
	ctx := context.Background()

	keys := make([][]model.SelectedFacet, 150)
	for i := range keys {
		keys[i] = idFacets(strings.Repeat("x", i+1))
	}
	skus, err := l.Sku(ctx).LoadMany(ctx, keys)
	if err != nil {
		t.Fatal(err)
	}
	for i, sku := range skus {
		if sku.ID != keys[i][0].Value {
			t.Fatalf("result %d = %s, want %s", i, sku.ID, keys[i][0].Value)
		}
	}

	slices.Sort(counts)
	if !slices.Equal(counts, []int{51, 99}) {
		t.Errorf("batch sizes = %v, want [51 99]", counts)
	}
}

func TestSimulationLoader_SlicesCombinedResult(t *testing.T) {
	var requested []vtex.PayloadItem
	idx := func(i int) *int { return &i }
	mock := &adapter.Mock{
		SimulationFunc: func(ctx context.Context, items []vtex.PayloadItem) (*vtex.Simulation, error) {
			requested = items
			return &vtex.Simulation{
				Items: []vtex.SimulationItem{
					{ID: "e", RequestIndex: idx(4), SellingPrice: 5},
					{ID: "a", RequestIndex: idx(0), SellingPrice: 1},
					{ID: "d", RequestIndex: idx(3), SellingPrice: 4},
					{ID: "b", RequestIndex: idx(1), SellingPrice: 2},
					{ID: "gift", SellingPrice: 0},
					{ID: "ghost", RequestIndex: idx(9)},
					{ID: "neg", RequestIndex: idx(-1)},
				},
				PostalCode: "22250-040",
			}, nil
		},
	}
	l := NewSimulationLoader(mock, SimulationBatchSize)
	ctx := context.Background()

	first := l.Load(ctx, []vtex.PayloadItem{{ID: "a", Quantity: 1}, {ID: "b", Quantity: 1}})
	second := l.Load(ctx, []vtex.PayloadItem{{ID: "c", Quantity: 1}, {ID: "d", Quantity: 1}, {ID: "e", Quantity: 1}})

	sim1, err := first()
	if err != nil {
		t.Fatal(err)
	}
	sim2, err := second()
	if err != nil {
		t.Fatal(err)
	}

	if len(requested) != 5 {
		t.Fatalf("requested %d items, want 5 in one call", len(requested))
	}
	if got := ids(sim1.Items); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("first caller items = %v, want [a b]", got)
	}
	if got := ids(sim2.Items); !slices.Equal(got, []string{"d", "e"}) {
		t.Errorf("second caller items = %v, want [d e]", got)
	}
	if sim1.PostalCode != "22250-040" || sim2.PostalCode != "22250-040" {
		t.Error("callers should share the rest of the simulation")
	}
}

func TestSimulationLoader_ErrorReachesEveryCaller(t *testing.T) {
	boom := model.NewUpstreamError("checkout", errors.New("boom"))
	mock := &adapter.Mock{
		SimulationFunc: func(ctx context.Context, items []vtex.PayloadItem) (*vtex.Simulation, error) {
			return nil, boom
		},
	}
	l := NewSimulationLoader(mock, SimulationBatchSize)
	ctx := context.Background()

	t1 := l.Load(ctx, []vtex.PayloadItem{{ID: "a"}})
	t2 := l.Load(ctx, []vtex.PayloadItem{{ID: "b"}})
	for _, thunk := range []func() (*vtex.Simulation, error){t1, t2} {
		if _, err := thunk(); !errors.Is(err, model.ErrUpstreamError) {
			t.Errorf("err = %v, want ErrUpstreamError", err)
		}
	}
}

func TestLoaders_PartitionBySalesChannel(t *testing.T) {
	var (
		mu       sync.Mutex
		channels []string
	)
	search := searchFor(map[string][]string{"p": {"1", "2"}})
	mock := &adapter.Mock{
		ProductsFunc: func(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error) {
			mu.Lock()
			channels = append(channels, session.FromContext(ctx).Channel)
			mu.Unlock()
			return search(ctx, args)
		},
	}
	l := NewFactory(mock, mock, Config{Wait: testWait}).New()

	ctx1 := session.WithSession(context.Background(), session.Session{Channel: "1"})
	ctx2 := session.WithChannel(ctx1, "2")

	t1 := l.Sku(ctx1).Load(ctx1, idFacets("1"))
	t2 := l.Sku(ctx2).Load(ctx2, idFacets("2"))
	if _, err := t1(); err != nil {
		t.Fatal(err)
	}
	if _, err := t2(); err != nil {
		t.Fatal(err)
	}

	slices.Sort(channels)
	if !slices.Equal(channels, []string{"1", "2"}) {
		t.Errorf("channels = %v, want one search per channel", channels)
	}
	if l.Sku(ctx1) == l.Sku(ctx2) {
		t.Error("channels should not share a loader")
	}
}

func TestLoaders_LoadProduct(t *testing.T) {
	calls := 0
	search := searchFor(map[string][]string{"p1": {"10", "11"}})
	mock := &adapter.Mock{
		ProductsFunc: func(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error) {
			calls++
			return search(ctx, args)
		},
	}
	l := NewFactory(mock, mock, Config{Wait: testWait}).New()
	ctx := WithLoaders(context.Background(), l)

	if FromContext(ctx) != l {
		t.Fatal("FromContext did not return the installed loaders")
	}

	ref10 := l.LoadProduct(ctx, "10")
	ref11 := l.LoadProduct(ctx, "11")

	p10, err := ref10()
	if err != nil {
		t.Fatal(err)
	}
	p11, err := ref11()
	if err != nil {
		t.Fatal(err)
	}
	if p10.SKU != "10" || p10.Slug != "product-p1-10" {
		t.Errorf("product = %+v", p10)
	}
	if p11.SKU != "11" {
		t.Errorf("product = %+v", p11)
	}
	if calls != 1 {
		t.Errorf("search called %d times, want 1", calls)
	}
}

func TestFromContext_Absent(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("want nil loaders on a bare context")
	}
}

func ids(items []vtex.SimulationItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestContextProducts_WithoutLoaders(t *testing.T) {
	_, err := ContextProducts{}.LoadProduct(context.Background(), "1")()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "INTERNAL_ERROR" {
		t.Errorf("err = %v, want INTERNAL_ERROR", err)
	}
}
