package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestFanOut_IsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	results := fanOut(context.Background(), 2, []int{1, 2, 3, 4}, func(_ context.Context, n int) (int, error) {
		switch n {
		case 2:
			return 0, boom
		case 3:
			panic("bad item")
		}
		return n * 10, nil
	})

	assert.Equal(t, 4, len(results))
	assert.Equal(t, 10, results[0].Value)
	assert.Equal(t, boom, results[1].Err)
	assert.NotEqual(t, nil, results[2].Err)
	assert.Equal(t, 3, results[2].Item)
	assert.Equal(t, 40, results[3].Value)
}

func TestFanOut_RespectsLimit(t *testing.T) {
	var running, peak int32
	items := make([]int, 16)
	fanOut(context.Background(), 3, items, func(context.Context, int) (struct{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return struct{}{}, nil
	})
	assert.Equal(t, true, atomic.LoadInt32(&peak) <= 3)
}
