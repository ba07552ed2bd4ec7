package plugin

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/wavegest/internal/config"
	"github.com/ayusman/wavegest/internal/gesture"
)

// QueueSize is how many pending plugin runs the dispatcher buffers before
// dropping new gestures.
const QueueSize = 8

// Result describes one finished plugin run.
type Result struct {
	Direction gesture.Direction
	Plugin    string
	Action    string
	Response  *Response
	Err       error
}

// Dispatcher runs the plugin action bound to each gesture direction. It is a
// gesture.Sink; runs happen on a worker goroutine so the capture loop never
// waits on a plugin.
type Dispatcher struct {
	mgr      *Manager
	exec     *Executor
	mu       sync.RWMutex
	bindings map[gesture.Direction]config.Binding
	onResult func(Result)

	queue  chan *Request
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher creates a Dispatcher and starts its worker. Binding keys are
// direction names.
func NewDispatcher(mgr *Manager, exec *Executor, bindings map[string]config.Binding) (*Dispatcher, error) {
	d := &Dispatcher{
		mgr:   mgr,
		exec:  exec,
		queue: make(chan *Request, QueueSize),
	}
	if err := d.SetBindings(bindings); err != nil {
		return nil, err
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.wg.Add(1)
	go d.run()

	return d, nil
}

// SetBindings replaces the direction bindings.
func (d *Dispatcher) SetBindings(bindings map[string]config.Binding) error {
	parsed := make(map[gesture.Direction]config.Binding, len(bindings))
	for name, b := range bindings {
		dir, err := gesture.ParseDirection(name)
		if err != nil {
			return fmt.Errorf("binding %q: %w", name, err)
		}
		parsed[dir] = b
	}

	d.mu.Lock()
	d.bindings = parsed
	d.mu.Unlock()
	return nil
}

// OnResult registers a callback invoked after every plugin run.
func (d *Dispatcher) OnResult(fn func(Result)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onResult = fn
}

// Notify queues the bound action for a gesture notification. Errors and
// unbound directions are ignored.
func (d *Dispatcher) Notify(n gesture.Notification) {
	if n.Gesture == nil {
		return
	}

	d.mu.RLock()
	b, ok := d.bindings[n.Gesture.Direction]
	d.mu.RUnlock()
	if !ok {
		return
	}

	req := &Request{
		Action:    b.Action,
		Gesture:   n.Gesture.Direction.String(),
		Magnitude: n.Gesture.Magnitude,
		Session:   n.Session,
		Params:    b.Params,
	}

	select {
	case d.queue <- req:
	default:
		log.Printf("Plugin queue full, dropping %s action for %s", b.Plugin, req.Gesture)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case req := <-d.queue:
			d.execute(req)
		}
	}
}

func (d *Dispatcher) execute(req *Request) {
	dir, _ := gesture.ParseDirection(req.Gesture)

	d.mu.RLock()
	b := d.bindings[dir]
	onResult := d.onResult
	d.mu.RUnlock()

	res := Result{Direction: dir, Plugin: b.Plugin, Action: req.Action}
	res.Response, res.Err = d.runPlugin(b.Plugin, req)

	switch {
	case res.Err != nil:
		log.Printf("Plugin %s action %s failed: %v", b.Plugin, req.Action, res.Err)
	case !res.Response.Success:
		log.Printf("Plugin %s action %s reported error: %s", b.Plugin, req.Action, res.Response.Error)
	default:
		log.Printf("Plugin %s ran %s for %s", b.Plugin, req.Action, req.Gesture)
	}

	if onResult != nil {
		onResult(res)
	}
}

func (d *Dispatcher) runPlugin(name string, req *Request) (*Response, error) {
	p, err := d.mgr.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !p.Manifest.Supports(req.Action) {
		return nil, fmt.Errorf("%s does not support action %q", name, req.Action)
	}
	return d.exec.Execute(d.ctx, p, req)
}

// Close stops the worker. Pending runs are dropped and a running plugin is
// killed.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.cancel()
		d.wg.Wait()
	})
}
