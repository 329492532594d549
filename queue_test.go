package framekit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueKeepsPostOrder(t *testing.T) {

	queue := NewFrameQueue()
	order := []int{}

	for i := 0; i < 5; i++ {
		i := i
		queue.PostFunc(func(fc *FrameContext) { order = append(order, i) })
	}
	queue.Post(nil)

	assert.Equal(t, 5, queue.Len())
	assert.Equal(t, 5, queue.Drain(&FrameContext{}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, 0, queue.Drain(&FrameContext{}))

}

func TestQueueEventsPostedWhileDrainingWait(t *testing.T) {

	queue := NewFrameQueue()
	ran := []string{}

	queue.PostFunc(func(fc *FrameContext) {
		ran = append(ran, "first")
		queue.PostFunc(func(fc *FrameContext) { ran = append(ran, "second") })
	})

	assert.Equal(t, 1, queue.Drain(&FrameContext{}))
	assert.Equal(t, []string{"first"}, ran)
	assert.Equal(t, 1, queue.Len())

	assert.Equal(t, 1, queue.Drain(&FrameContext{}))
	assert.Equal(t, []string{"first", "second"}, ran)

}

func TestQueueConcurrentPosts(t *testing.T) {

	queue := NewFrameQueue()
	count := 0

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				queue.PostFunc(func(fc *FrameContext) { count++ })
			}
		}()
	}

	drained := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for waiting := true; waiting; {
		select {
		case <-done:
			waiting = false
		default:
		}
		drained += queue.Drain(&FrameContext{})
	}

	assert.Equal(t, 500, drained)
	assert.Equal(t, 500, count)

}
