package agw

import (
	"fmt"
	"sync"
	"time"
)

// InboundFrame is one frame received from the TNC, kept until something
// has time to process it.
type InboundFrame struct {
	Header   Header
	Payload  []byte
	Received time.Time
}

// FrameBuffer is a thread-safe bounded buffer for inbound TNC frames.
// The listener inserts continuously in the background; when the buffer
// is full the oldest frame is dropped, because stale monitored traffic
// is worthless and the listener must never block the TNC connection.
type FrameBuffer struct {
	mu       sync.Mutex
	frames   []*InboundFrame
	start    int
	size     int
	capacity int
	dropped  int
}

// NewFrameBuffer creates a buffer holding up to capacity frames.
func NewFrameBuffer(capacity int) (*FrameBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid buffer capacity: %d", capacity)
	}
	return &FrameBuffer{
		frames:   make([]*InboundFrame, capacity),
		capacity: capacity,
	}, nil
}

// Insert adds a frame, evicting the oldest one if the buffer is full.
// Returns an error if the frame is nil.
func (fb *FrameBuffer) Insert(frame *InboundFrame) error {
	if frame == nil {
		return fmt.Errorf("cannot insert nil frame")
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.size == fb.capacity {
		fb.start = (fb.start + 1) % fb.capacity
		fb.size--
		fb.dropped++
	}

	fb.frames[(fb.start+fb.size)%fb.capacity] = frame
	fb.size++
	return nil
}

// DrainAll removes and returns all buffered frames in arrival order.
// Returns nil if the buffer is empty.
func (fb *FrameBuffer) DrainAll() []*InboundFrame {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.size == 0 {
		return nil
	}

	results := make([]*InboundFrame, 0, fb.size)
	for i := 0; i < fb.size; i++ {
		slot := (fb.start + i) % fb.capacity
		results = append(results, fb.frames[slot])
		fb.frames[slot] = nil // release the payload for collection
	}

	fb.start = 0
	fb.size = 0
	return results
}

// Size returns the current number of buffered frames.
func (fb *FrameBuffer) Size() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.size
}

// Dropped returns the number of frames evicted since creation.
func (fb *FrameBuffer) Dropped() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.dropped
}

// Clear removes all buffered frames.
func (fb *FrameBuffer) Clear() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.frames {
		fb.frames[i] = nil
	}
	fb.start = 0
	fb.size = 0
}
