package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexAndAttributesDeterministic(t *testing.T) {
	// Arrange
	scenarios := [][3]uint64{
		{3, 3, 3},
		{20, 5, 10},
		{1, 7, 4},
		{9, 1, 1},
	}

	for _, scenario := range scenarios {
		courses, rooms, slots := scenario[0], scenario[1], scenario[2]

		// Act
		indexer := newIndexer(courses, rooms, slots)

		// Assert
		expected := uint64(0)
		for course := range courses {
			for room := range rooms {
				for slot := range slots {
					index := indexer.Index(course, room, slot)
					assert.Equal(t, expected, index, "indices must be dense and ordered by (course, room, slot)")
					expected++

					actualCourse, actualRoom, actualSlot := indexer.Attributes(index)
					assert.Equal(t, [3]uint64{course, room, slot}, [3]uint64{actualCourse, actualRoom, actualSlot})
				}
			}
		}
		assert.Equal(t, expected, indexer.Size())
	}
}

func TestIndexAndAttributesRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for range 50 {
		courses, rooms, slots := uint64(rng.Intn(30)+1), uint64(rng.Intn(10)+1), uint64(rng.Intn(40)+1)
		indexer := newIndexer(courses, rooms, slots)

		index := uint64(rng.Int63n(int64(indexer.Size())))
		course, room, slot := indexer.Attributes(index)

		assert.Equal(t, index, indexer.Index(course, room, slot))
	}
}

func TestIndexerPanicsOutOfBounds(t *testing.T) {
	indexer := newIndexer(2, 2, 2)

	assert.Panics(t, func() { indexer.Index(2, 0, 0) })
	assert.Panics(t, func() { indexer.Index(0, 0, 2) })
	assert.Panics(t, func() { indexer.Attributes(8) })
}
