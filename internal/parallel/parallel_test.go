package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForSequentialFallback(t *testing.T) {
	cfg := Sequential()
	var order []int
	For(10, func(i int) { order = append(order, i) }, cfg)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestForSmallNStaysSequential(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 100}
	var order []int
	For(10, func(i int) { order = append(order, i) }, cfg)
	assert.Len(t, order, 10)
}

func TestForCoversAllIndices(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}
	const n = 1000
	var hits [n]int32
	For(n, func(i int) { atomic.AddInt32(&hits[i], 1) }, cfg)
	for i, h := range hits {
		assert.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestForZeroLength(t *testing.T) {
	called := false
	For(0, func(i int) { called = true }, DefaultConfig())
	assert.False(t, called)
}
