package livestore

import (
	"context"
	"sync"
)

// watcher runs one subscription: every notify schedules a fresh read and a
// delivery on the watcher's own goroutine. Bursts of notifications
// collapse into one delivery of the latest state, and deliveries of one
// subscription never overlap.
type watcher struct {
	signal  chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	onClose func()
}

func startWatcher(ctx context.Context, deliver func(ctx context.Context), onClose func()) *watcher {
	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{
		signal:  make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
		onClose: onClose,
	}
	w.notify()

	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.signal:
				// Unsubscribe may have raced with the signal.
				if ctx.Err() != nil {
					return
				}
				deliver(ctx)
			}
		}
	}()
	return w
}

func (w *watcher) notify() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *watcher) Unsubscribe() {
	w.once.Do(func() {
		w.cancel()
		<-w.done
		if w.onClose != nil {
			w.onClose()
		}
	})
}
