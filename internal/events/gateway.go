package events

import (
	"log"
	"sync"

	"translation-market/internal/models"

	"github.com/google/uuid"
)

// Gateway fans out domain events to subscribers. It is a pure sink: the
// workflow engine publishes after commit and never waits on delivery.
// A single dispatch goroutine drains the queue, so events for the same
// entity reach every subscriber in the order they were produced.
type Gateway struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64

	queue chan *models.DomainEvent
	done  chan struct{}
	wg    sync.WaitGroup
}

type subscriber struct {
	id        uint64
	requestID uuid.UUID // uuid.Nil matches every request
	actorID   uint      // 0 matches every actor
	ch        chan *models.DomainEvent
}

// Subscription is a live event feed. Close it when the consumer goes away.
type Subscription struct {
	C <-chan *models.DomainEvent

	gateway *Gateway
	id      uint64
	once    sync.Once
}

func NewGateway() *Gateway {
	g := &Gateway{
		subs:  make(map[uint64]*subscriber),
		queue: make(chan *models.DomainEvent, 1024),
		done:  make(chan struct{}),
	}
	g.wg.Add(1)
	go g.dispatch()
	return g
}

// Publish enqueues an event for fan-out. It never blocks the caller: if
// the queue is saturated the event is dropped and subscribers re-sync by
// re-fetching entity state.
func (g *Gateway) Publish(event *models.DomainEvent) {
	select {
	case g.queue <- event:
	case <-g.done:
	default:
		log.Printf("event gateway: queue full, dropping %s/%s %s->%s",
			event.EntityType, event.EntityID, event.FromStatus, event.ToStatus)
	}
}

// Subscribe registers interest filtered by request id and/or actor id.
// Zero values match everything.
func (g *Gateway) Subscribe(requestID uuid.UUID, actorID uint, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}

	g.mu.Lock()
	g.nextID++
	sub := &subscriber{
		id:        g.nextID,
		requestID: requestID,
		actorID:   actorID,
		ch:        make(chan *models.DomainEvent, buffer),
	}
	g.subs[sub.id] = sub
	g.mu.Unlock()

	return &Subscription{C: sub.ch, gateway: g, id: sub.id}
}

// Close stops the subscription and releases its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.gateway.mu.Lock()
		if sub, ok := s.gateway.subs[s.id]; ok {
			delete(s.gateway.subs, s.id)
			close(sub.ch)
		}
		s.gateway.mu.Unlock()
	})
}

// Close shuts the gateway down and drops all subscribers.
func (g *Gateway) Close() {
	close(g.done)
	g.wg.Wait()

	g.mu.Lock()
	for id, sub := range g.subs {
		delete(g.subs, id)
		close(sub.ch)
	}
	g.mu.Unlock()
}

func (g *Gateway) dispatch() {
	defer g.wg.Done()
	for {
		select {
		case event := <-g.queue:
			g.deliver(event)
		case <-g.done:
			return
		}
	}
}

func (g *Gateway) deliver(event *models.DomainEvent) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, sub := range g.subs {
		if sub.requestID != uuid.Nil && sub.requestID != event.RequestID {
			continue
		}
		if sub.actorID != 0 && sub.actorID != event.ActorID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Slow subscriber: drop rather than stall the dispatch
			// loop. The client re-syncs on reconnect.
			log.Printf("event gateway: subscriber %d lagging, dropped event seq %d", sub.id, event.Seq)
		}
	}
}
