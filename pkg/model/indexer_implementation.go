package model

import "log"

type indexerImplementation struct {
	courses uint64
	rooms   uint64
	slots   uint64
}

func (indexer *indexerImplementation) Index(course, room, slot uint64) uint64 {
	if course >= indexer.courses || room >= indexer.rooms || slot >= indexer.slots {
		log.Panicf("attributes (%v, %v, %v) out of bounds (%v, %v, %v)", course, room, slot, indexer.courses, indexer.rooms, indexer.slots)
	}
	return slot + indexer.slots*room + indexer.slots*indexer.rooms*course
}

func (indexer *indexerImplementation) Attributes(index uint64) (course, room, slot uint64) {
	if index >= indexer.Size() {
		log.Panicf("index %v out of bounds %v", index, indexer.Size())
	}
	slot = index % indexer.slots
	index = index / indexer.slots

	room = index % indexer.rooms
	index = index / indexer.rooms

	course = index % indexer.courses

	return course, room, slot
}

func (indexer *indexerImplementation) Size() uint64 {
	return indexer.courses * indexer.rooms * indexer.slots
}
