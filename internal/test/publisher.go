package test

import (
	"encoding/json"
	"sync"

	"github.com/polkiloo/foodrush/internal/realtime"
)

// Published records one publish call.
type Published struct {
	Target  string
	Event   string
	Payload any
}

// Decode re-encodes the payload into v.
func (p Published) Decode(v any) error {
	raw, err := json.Marshal(p.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// PublisherStub records publishes and reports delivery according to Delivered.
type PublisherStub struct {
	PublishFn func(realtime.Target, string, any) (bool, error)
	Delivered bool

	mu    sync.Mutex
	Calls []Published
}

// Publish stores the call.
func (p *PublisherStub) Publish(target realtime.Target, event string, payload any) (bool, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, Published{Target: target.String(), Event: event, Payload: payload})
	p.mu.Unlock()
	if p.PublishFn != nil {
		return p.PublishFn(target, event, payload)
	}
	return p.Delivered, nil
}

// Targets lists targets of calls for event in publish order.
func (p *PublisherStub) Targets(event string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, c := range p.Calls {
		if c.Event == event {
			out = append(out, c.Target)
		}
	}
	return out
}

// Snapshot returns a copy of recorded calls.
func (p *PublisherStub) Snapshot() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Published(nil), p.Calls...)
}
