package app

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
)

// frameBox holds the latest annotated frame. Publishing overwrites the
// previous frame whether or not anyone read it; readers block until a frame
// newer than the one they last saw arrives.
type frameBox struct {
	mu      sync.Mutex
	frame   *image.RGBA
	seq     uint64
	read    uint64 // highest seq handed to a reader
	changed chan struct{}
	drops   uint64
}

func newFrameBox() *frameBox {
	return &frameBox{changed: make(chan struct{})}
}

// publish stores f and wakes every waiting reader. f must not be modified
// afterwards.
func (b *frameBox) publish(f *image.RGBA) {
	b.mu.Lock()
	if b.frame != nil && b.read < b.seq {
		atomic.AddUint64(&b.drops, 1)
	}
	b.frame = f
	b.seq++
	close(b.changed)
	b.changed = make(chan struct{})
	b.mu.Unlock()
}

// latest returns the current frame and its sequence number.
func (b *frameBox) latest() (*image.RGBA, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.read = b.seq
	return b.frame, b.seq
}

// wait blocks until a frame with a sequence number above after is available
// or ctx is done.
func (b *frameBox) wait(ctx context.Context, after uint64) (*image.RGBA, uint64, error) {
	for {
		b.mu.Lock()
		if b.seq > after && b.frame != nil {
			f, seq := b.frame, b.seq
			b.read = seq
			b.mu.Unlock()
			return f, seq, nil
		}
		changed := b.changed
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-changed:
		}
	}
}

// dropped returns how many frames were overwritten before any reader saw them.
func (b *frameBox) dropped() uint64 {
	return atomic.LoadUint64(&b.drops)
}

func (b *frameBox) reset() {
	b.mu.Lock()
	b.frame = nil
	b.mu.Unlock()
}
