package loader

import (
	"context"

	"storefront-proxy/internal/dataloader"
	"storefront-proxy/internal/vtex"
)

// SimulationBatchSize is the most callers one simulation request serves.
const SimulationBatchSize = 20

// Simulator prices a list of items.
type Simulator interface {
	Simulation(ctx context.Context, items []vtex.PayloadItem) (*vtex.Simulation, error)
}

// SimulationLoader prices one caller's item list. Lists from concurrent
// callers are concatenated into a single simulation.
type SimulationLoader = dataloader.Loader[[]vtex.PayloadItem, *vtex.Simulation]

// NewSimulationLoader creates a simulation loader with the given batch
// ceiling.
func NewSimulationLoader(sim Simulator, batchSize int, opts ...dataloader.Option[[]vtex.PayloadItem]) *SimulationLoader {
	opts = append([]dataloader.Option[[]vtex.PayloadItem]{
		dataloader.WithMaxBatch[[]vtex.PayloadItem](batchSize),
	}, opts...)
	return dataloader.New(simulationBatch(sim), opts...)
}

func simulationBatch(sim Simulator) dataloader.BatchFunc[[]vtex.PayloadItem, *vtex.Simulation] {
	return func(ctx context.Context, keys [][]vtex.PayloadItem) ([]*vtex.Simulation, error) {
		var items []vtex.PayloadItem
		for _, key := range keys {
			items = append(items, key...)
		}

		simulation, err := sim.Simulation(ctx, items)
		if err != nil {
			return nil, err
		}

		// Upstream may reorder, drop or add items; only tagged ones count.
		slots := make([]*vtex.SimulationItem, len(items))
		for i := range simulation.Items {
			item := &simulation.Items[i]
			if item.RequestIndex == nil {
				continue
			}
			idx := *item.RequestIndex
			if idx < 0 || idx >= len(slots) {
				continue
			}
			slots[idx] = item
		}

		results := make([]*vtex.Simulation, len(keys))
		start := 0
		for i, key := range keys {
			end := start + len(key)
			own := make([]vtex.SimulationItem, 0, len(key))
			for _, item := range slots[start:end] {
				if item != nil {
					own = append(own, *item)
				}
			}
			result := *simulation
			result.Items = own
			results[i] = &result
			start = end
		}
		return results, nil
	}
}
