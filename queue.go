package framekit

import "sync"

// Event is a change to scene state that was produced outside of the render loop (by input, the host window, an asset
// loader, or a remote panel). Events are applied at the top of a frame, in the order they were posted.
type Event interface {
	Apply(fc *FrameContext)
}

// Task adapts a function to the Event interface.
type Task func(fc *FrameContext)

// Apply calls the Task.
func (task Task) Apply(fc *FrameContext) {
	task(fc)
}

// FrameQueue is the hand-off point between other goroutines and the render loop. Post can be called from anywhere; Drain is
// called once per frame by the goroutine that owns the scene.
type FrameQueue struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event
}

// NewFrameQueue creates a new, empty FrameQueue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// Post queues an Event to be applied at the top of the next frame.
func (queue *FrameQueue) Post(ev Event) {
	if ev == nil {
		return
	}
	queue.mu.Lock()
	queue.pending = append(queue.pending, ev)
	queue.mu.Unlock()
}

// PostFunc queues a function to be run at the top of the next frame.
func (queue *FrameQueue) PostFunc(fn func(fc *FrameContext)) {
	queue.Post(Task(fn))
}

// Len returns how many Events are waiting.
func (queue *FrameQueue) Len() int {
	queue.mu.Lock()
	defer queue.mu.Unlock()
	return len(queue.pending)
}

// Drain applies every Event posted before the call, in post order, and returns how many were applied. Events posted while
// draining (including by the Events themselves) wait for the next Drain.
func (queue *FrameQueue) Drain(fc *FrameContext) int {

	queue.mu.Lock()
	events := queue.pending
	queue.pending = queue.spare[:0]
	queue.mu.Unlock()

	for i, ev := range events {
		ev.Apply(fc)
		events[i] = nil
	}

	queue.spare = events[:0]

	return len(events)

}
