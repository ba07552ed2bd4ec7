package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayusman/wavegest/testdata"
)

func TestFrameBox_CountsUnreadOverwrites(t *testing.T) {
	b := newFrameBox()

	b.publish(testdata.Solid(4, 4, testdata.Background))
	if got := b.dropped(); got != 0 {
		t.Fatalf("dropped() = %d after first publish, want 0", got)
	}

	b.publish(testdata.Solid(4, 4, testdata.Skin))
	if got := b.dropped(); got != 1 {
		t.Fatalf("dropped() = %d after unread overwrite, want 1", got)
	}

	f, seq := b.latest()
	if seq != 2 || f.RGBAAt(0, 0) != testdata.Skin {
		t.Errorf("latest() = seq %d colour %v", seq, f.RGBAAt(0, 0))
	}

	b.publish(testdata.Solid(4, 4, testdata.Cyan))
	if got := b.dropped(); got != 1 {
		t.Errorf("dropped() = %d after reading, want 1", got)
	}
}

func TestFrameBox_Wait(t *testing.T) {
	b := newFrameBox()

	done := make(chan uint64, 1)
	go func() {
		_, seq, err := b.wait(context.Background(), 0)
		if err != nil {
			t.Errorf("wait() error = %v", err)
		}
		done <- seq
	}()

	b.publish(testdata.Solid(4, 4, testdata.Background))

	select {
	case seq := <-done:
		if seq != 1 {
			t.Errorf("seq = %d, want 1", seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wait() never returned")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := b.wait(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("wait() error = %v, want context.Canceled", err)
	}
}
