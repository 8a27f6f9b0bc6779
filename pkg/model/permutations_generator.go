package model

type permutationGenerator interface {
	// ConstrainedPermutations enumerates (slot, room, professor) triples with slot outermost and
	// professor innermost, pruning a prefix as soon as one constraint rejects it. Positions not
	// chosen yet hold math.MaxUint64, so a constraint reading permutation[i] must accept that value:
	//
	//	generator.ConstrainedPermutations([]func(permutation []uint64) bool{
	//		func(permutation []uint64) bool {
	//			return permutation[1] == math.MaxUint64 || permutation[1] == fixedRoom
	//		},
	//	})
	ConstrainedPermutations(constraints []func(permutation []uint64) bool) [][]uint64
}

func newPermutationGenerator(slots, rooms, professors uint64) permutationGenerator {
	return &permutationGeneratorImplementation{slots, rooms, professors}
}
