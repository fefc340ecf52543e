package graph

// edgeCache is an immutable snapshot of the optional per-edge and per-node
// vectors. Enable and Disable publish a new snapshot; readers never see a
// partially built one.
type edgeCache struct {
	sources      []NodeID
	destinations []NodeID
	outbounds    []EdgeID // len(nodes)+1 offsets into the edge array
}

func (c *edgeCache) options() CacheOptions {
	if c == nil {
		return CacheOptions{}
	}
	return CacheOptions{
		Sources:      c.sources != nil,
		Destinations: c.destinations != nil,
		Outbounds:    c.outbounds != nil,
	}
}

// Enable materializes the selected vectors. Getter results are the same
// with or without them; only access cost and memory change.
func (g *Graph) Enable(opts CacheOptions) {
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()

	next := &edgeCache{}
	if cur := g.cache.Load(); cur != nil {
		*next = *cur
	}

	if opts.Sources && next.sources == nil {
		sources := make([]NodeID, len(g.edges))
		for i, key := range g.edges {
			sources[i] = NodeID(key >> g.nodeBits)
		}
		next.sources = sources
	}
	if opts.Destinations && next.destinations == nil {
		destinations := make([]NodeID, len(g.edges))
		mask := uint64(1)<<g.nodeBits - 1
		for i, key := range g.edges {
			destinations[i] = NodeID(key & mask)
		}
		next.destinations = destinations
	}
	if opts.Outbounds && next.outbounds == nil {
		n := g.nodes.Len()
		outbounds := make([]EdgeID, n+1)
		for _, key := range g.edges {
			outbounds[(key>>g.nodeBits)+1]++
		}
		for i := 1; i <= n; i++ {
			outbounds[i] += outbounds[i-1]
		}
		next.outbounds = outbounds
	}
	g.cache.Store(next)
}

// Disable drops the selected vectors.
func (g *Graph) Disable(opts CacheOptions) {
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()

	cur := g.cache.Load()
	if cur == nil {
		return
	}
	next := *cur
	if opts.Sources {
		next.sources = nil
	}
	if opts.Destinations {
		next.destinations = nil
	}
	if opts.Outbounds {
		next.outbounds = nil
	}
	if !next.options().Any() {
		g.cache.Store(nil)
		return
	}
	g.cache.Store(&next)
}

// Enabled reports which vectors are currently materialized.
func (g *Graph) Enabled() CacheOptions {
	return g.cache.Load().options()
}
