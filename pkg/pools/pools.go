// Package pools provides object pooling for reducing GC pressure.
//
// Walk generation needs a scratch slice of transition weights and one of
// candidate neighbours per step. Those slices are sized by node degree and
// are pooled here by size class:
//
//   - SlicePool: generic size-class based slice pooling
//   - Float64s / PutFloat64s: transition weight scratch space
//   - NodeIDs / PutNodeIDs: neighbour id scratch space
package pools
