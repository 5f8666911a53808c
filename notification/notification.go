// Package notification broadcasts task execution events to listeners.
package notification

import (
	"sync"
	"time"
)

type Kind int

const (
	Started Kind = iota
	Progress
	Warning
	Failed
	Completed
)

func (k Kind) String() string {
	return []string{"started", "progress", "warning", "failed", "completed"}[k]
}

// Event describes one step in the life of an execution.
type Event struct {
	Kind        Kind
	ExecutionID string
	Task        string
	Time        time.Time

	// Progress
	Done, Total int
	// Warning
	Message string
	// Failed
	Err error
	// Completed
	Documents int
	Bytes     int64
	Elapsed   time.Duration
}

// Percent returns the progress of a Progress event in 0..100.
func (e Event) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Done) * 100 / float64(e.Total)
}

type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Dispatcher delivers events synchronously, in subscription order.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[Kind][]Listener
	all       []Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[Kind][]Listener)}
}

// Subscribe registers l for kinds, or for every kind when none is given.
func (d *Dispatcher) Subscribe(l Listener, kinds ...Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(kinds) == 0 {
		d.all = append(d.all, l)
		return
	}
	for _, k := range kinds {
		d.listeners[k] = append(d.listeners[k], l)
	}
}

// Publish stamps e.Time when unset and hands e to the listeners.
func (d *Dispatcher) Publish(e Event) {
	if d == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	d.mu.RLock()
	ls := make([]Listener, 0, len(d.all)+len(d.listeners[e.Kind]))
	ls = append(ls, d.listeners[e.Kind]...)
	ls = append(ls, d.all...)
	d.mu.RUnlock()
	for _, l := range ls {
		l.OnEvent(e)
	}
}
