package model

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

type permutationGeneratorImplementation struct {
	slots, rooms, professors uint64
}

func (generator permutationGeneratorImplementation) ConstrainedPermutations(constraints []func(permutation []uint64) bool) [][]uint64 {
	domains := []uint64{generator.slots, generator.rooms, generator.professors}
	permutation := []uint64{math.MaxUint64, math.MaxUint64, math.MaxUint64}
	permutations := make([][]uint64, 0)

	var extend func(depth int)
	extend = func(depth int) {
		if depth == len(domains) {
			permutations = append(permutations, slices.Clone(permutation))
			return
		}

		for value := range domains[depth] {
			permutation[depth] = value
			// Prune as soon as a partially built permutation breaks a constraint
			if lo.EveryBy(constraints, func(constraint func(permutation []uint64) bool) bool { return constraint(permutation) }) {
				extend(depth + 1)
			}
		}
		permutation[depth] = math.MaxUint64
	}
	extend(0)

	return permutations
}
