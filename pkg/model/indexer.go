package model

// indexer interface is design to give a unique index to a (course, room, slot) combination and vice versa
type indexer interface {
	// Returns a unique index to a combination of course, room and slot
	Index(course, room, slot uint64) uint64
	// Returns the combination of course, room and slot behind a unique index
	Attributes(index uint64) (course, room, slot uint64)
	// Returns the amount of distinct indices
	Size() uint64
}

func newIndexer(courses, rooms, slots uint64) indexer {
	return &indexerImplementation{
		courses: courses,
		rooms:   rooms,
		slots:   slots,
	}
}
