package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sweetcrumb/shop/pkg/collection"
)

type line struct {
	ProductID uint
	Quantity  int
}

func TestPluckAndKeyBy(t *testing.T) {
	lines := []line{
		{ProductID: 3, Quantity: 2},
		{ProductID: 7, Quantity: 1},
	}

	ids := collection.Pluck(lines, func(l line) uint { return l.ProductID })
	assert.Equal(t, []uint{3, 7}, ids)

	byID := collection.KeyBy(lines, func(l line) uint { return l.ProductID })
	assert.Len(t, byID, 2)
	assert.Equal(t, 1, byID[7].Quantity)
}

func TestFilterAndFirst(t *testing.T) {
	lines := []line{
		{ProductID: 3, Quantity: 2},
		{ProductID: 7, Quantity: 0},
		{ProductID: 9, Quantity: 5},
	}

	nonEmpty := collection.Filter(lines, func(l line) bool { return l.Quantity > 0 })
	assert.Len(t, nonEmpty, 2)

	first, ok := collection.First(lines, func(l line) bool { return l.Quantity > 3 })
	assert.True(t, ok)
	assert.Equal(t, uint(9), first.ProductID)

	_, ok = collection.First(lines, func(l line) bool { return l.Quantity > 10 })
	assert.False(t, ok)
}

func TestSumAndUnique(t *testing.T) {
	lines := []line{
		{ProductID: 3, Quantity: 2},
		{ProductID: 3, Quantity: 1},
	}

	total := collection.Sum(lines, func(l line) int { return l.Quantity })
	assert.Equal(t, 3, total)

	ids := collection.Unique(collection.Pluck(lines, func(l line) uint { return l.ProductID }))
	assert.Equal(t, []uint{3}, ids)
}
