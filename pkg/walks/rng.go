package walks

import "math/rand/v2"

// splitmix64 scrambles a seed so that consecutive seeds give unrelated streams.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// walkRand is a generator reseeded for every walk, so the walk with index i
// depends only on the base seed and i.
type walkRand struct {
	pcg *rand.PCG
	*rand.Rand
}

func newWalkRand() *walkRand {
	pcg := rand.NewPCG(0, 0)
	return &walkRand{pcg: pcg, Rand: rand.New(pcg)}
}

func (r *walkRand) reseed(base uint64, index int) {
	s := splitmix64(base + uint64(index))
	r.pcg.Seed(s, splitmix64(s))
}
