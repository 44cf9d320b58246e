// Package loader builds the request-scoped batch loaders that sit between
// resolvers and the commerce platform: a SKU loader backed by product search
// and a simulation loader backed by checkout simulation.
package loader

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-proxy/internal/dataloader"
	"storefront-proxy/internal/model"
	"storefront-proxy/internal/session"
	"storefront-proxy/internal/vtex"
)

// Config tunes the loaders a Factory builds. Zero values use the defaults.
type Config struct {
	SkuBatchSize        int
	SimulationBatchSize int
	Wait                time.Duration
}

// Factory creates fresh Loaders for each incoming request.
type Factory struct {
	search ProductSearcher
	sim    Simulator
	cfg    Config
}

// NewFactory creates a Factory over the given upstream services.
func NewFactory(search ProductSearcher, sim Simulator, cfg Config) *Factory {
	if cfg.SkuBatchSize <= 0 {
		cfg.SkuBatchSize = SkuBatchSize
	}
	if cfg.SimulationBatchSize <= 0 {
		cfg.SimulationBatchSize = SimulationBatchSize
	}
	if cfg.Wait <= 0 {
		cfg.Wait = dataloader.DefaultWait
	}
	return &Factory{search: search, sim: sim, cfg: cfg}
}

// New returns an empty set of loaders. It must not outlive the request.
func (f *Factory) New() *Loaders {
	return &Loaders{factory: f, byChannel: make(map[string]*pair)}
}

// Loaders holds one SKU loader and one simulation loader per sales channel
// seen during a request. A batch runs with the context of its first caller,
// so keys for different channels must never share a window.
type Loaders struct {
	factory *Factory

	mu        sync.Mutex
	byChannel map[string]*pair
}

type pair struct {
	sku        *SkuLoader
	simulation *SimulationLoader
}

func (l *Loaders) forChannel(ctx context.Context) *pair {
	channel := session.FromContext(ctx).Channel

	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.byChannel[channel]
	if !ok {
		cfg := l.factory.cfg
		p = &pair{
			sku: NewSkuLoader(l.factory.search, cfg.SkuBatchSize,
				dataloader.WithWait[[]model.SelectedFacet](cfg.Wait)),
			simulation: NewSimulationLoader(l.factory.sim, cfg.SimulationBatchSize,
				dataloader.WithWait[[]vtex.PayloadItem](cfg.Wait)),
		}
		l.byChannel[channel] = p
	}
	return p
}

// Sku returns the SKU loader for the request's sales channel.
func (l *Loaders) Sku(ctx context.Context) *SkuLoader {
	return l.forChannel(ctx).sku
}

// Simulation returns the simulation loader for the request's sales channel.
func (l *Loaders) Simulation(ctx context.Context) *SimulationLoader {
	return l.forChannel(ctx).simulation
}

// LoadProduct enqueues a lookup of skuID and returns a deferred product.
// Refs created before any of them is resolved share one search call.
func (l *Loaders) LoadProduct(ctx context.Context, skuID string) model.ProductRef {
	thunk := l.Sku(ctx).Load(ctx, []model.SelectedFacet{{Key: "id", Value: skuID}})
	return func() (*model.Product, error) {
		sku, err := thunk()
		if err != nil {
			return nil, err
		}
		p := vtex.ToProduct(sku)
		return &p, nil
	}
}

// ContextProducts loads products through the Loaders installed in the
// request context.
type ContextProducts struct{}

// LoadProduct implements reconcile.ProductLoader.
func (ContextProducts) LoadProduct(ctx context.Context, skuID string) model.ProductRef {
	l := FromContext(ctx)
	if l == nil {
		return func() (*model.Product, error) {
			return nil, model.NewInternalError(errors.New("no loaders in request context"))
		}
	}
	return l.LoadProduct(ctx, skuID)
}

type contextKey string

const loadersKey contextKey = "storefront.loaders"

// WithLoaders returns a context carrying l.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext returns the request's loaders, or nil if none were installed.
func FromContext(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}
