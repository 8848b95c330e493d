package service

import (
	"time"

	"golang.org/x/exp/rand"
)

func newRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// pickRandom 从候选下标中等概率选出一个，调用方保证 candidates 非空
func pickRandom(rng *rand.Rand, candidates []int) int {
	return candidates[rng.Intn(len(candidates))]
}
