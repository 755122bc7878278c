package plugin

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/repcount/internal/tracker"
)

// Dispatcher defaults.
const (
	DefaultTimeout   = 5 * time.Second
	DefaultQueueSize = 64
)

// Dispatcher runs subscribed plugins for repetition events on a background
// goroutine so a slow plugin never stalls frame processing. When the queue
// is full new requests are dropped.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan job
	session  func() string
	wg       sync.WaitGroup
	once     sync.Once

	mu      sync.Mutex
	dropped int
	failed  int
	ran     int
}

type job struct {
	plugin *Plugin
	req    *Request
}

// NewDispatcher starts a dispatcher over the plugins known to manager.
// session, when not nil, supplies the current session ID for each request.
func NewDispatcher(manager *Manager, executor *Executor, session func() string) *Dispatcher {
	d := &Dispatcher{
		manager:  manager,
		executor: executor,
		queue:    make(chan job, DefaultQueueSize),
		session:  session,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Handle queues one request per subscribed plugin and event. Its signature
// matches app.EventHandler.
func (d *Dispatcher) Handle(events []tracker.Event) {
	sessionID := ""
	if d.session != nil {
		sessionID = d.session()
	}

	for _, e := range events {
		for _, p := range d.manager.Subscribers(string(e.Kind), e.Count) {
			req := &Request{
				Event:     EventRepetition,
				SessionID: sessionID,
				Person:    e.Person,
				Kind:      string(e.Kind),
				Count:     e.Count,
				Config:    p.Manifest.Config,
			}
			select {
			case d.queue <- job{plugin: p, req: req}:
			default:
				d.mu.Lock()
				d.dropped++
				d.mu.Unlock()
				log.Printf("Plugin queue full, dropping %s for %s", p.Manifest.Name, e.Kind)
			}
		}
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for j := range d.queue {
		resp, err := d.executor.Execute(j.plugin, j.req)

		d.mu.Lock()
		d.ran++
		if err != nil || !resp.Success {
			d.failed++
		}
		d.mu.Unlock()

		switch {
		case err != nil:
			log.Printf("Plugin error: %v", err)
		case !resp.Success:
			log.Printf("Plugin %s reported failure: %s", j.plugin.Manifest.Name, resp.Error)
		}
	}
}

// Close waits for queued plugins to finish. Handle must not be called
// after Close.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

// Stats returns how many plugin runs completed, failed and were dropped.
func (d *Dispatcher) Stats() (ran, failed, dropped int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ran, d.failed, d.dropped
}
