package broadcast

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/metrics"
)

const DefaultQueueSize = 64

// Subscriber is one consumer of a project's event stream. Events are
// delivered in enqueue order; when the queue is full the oldest
// undelivered event is dropped to make room (at-most-once delivery).
type Subscriber struct {
	ID        string
	ProjectID string

	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// enqueue never blocks; a full queue sheds its oldest event.
func (s *Subscriber) enqueue(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for {
		select {
		case s.ch <- ev:
			return true
		default:
			select {
			case <-s.ch:
				metrics.IncEventDropped()
			default:
			}
		}
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Hub fans events out to all subscribers of the owning project.
type Hub struct {
	mu        sync.RWMutex
	queueSize int
	subs      map[string]map[string]*Subscriber
	closed    bool
}

func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		queueSize: queueSize,
		subs:      make(map[string]map[string]*Subscriber),
	}
}

func (h *Hub) Subscribe(projectID string) *Subscriber {
	sub := &Subscriber{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		ch:        make(chan Event, h.queueSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub
	}
	if h.subs[projectID] == nil {
		h.subs[projectID] = make(map[string]*Subscriber)
	}
	h.subs[projectID][sub.ID] = sub
	h.mu.Unlock()

	metrics.AddSubscriber(1)
	common.GetLoggerWith(common.LoggerNameBroadcast).Info("Subscriber registered",
		zap.String("subscriber_id", sub.ID), zap.String("project_id", projectID))

	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if projectSubs, ok := h.subs[sub.ProjectID]; ok {
		if _, ok := projectSubs[sub.ID]; ok {
			delete(projectSubs, sub.ID)
			if len(projectSubs) == 0 {
				delete(h.subs, sub.ProjectID)
			}
			metrics.AddSubscriber(-1)
		}
	}
	h.mu.Unlock()

	sub.close()
}

// Publish delivers the event to every current subscriber of its
// project. A slow subscriber never blocks the publisher.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	metrics.IncEventPublished(string(ev.Type))

	for _, sub := range h.subs[ev.ProjectID] {
		sub.enqueue(ev)
	}
}

func (h *Hub) SubscriberCount(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[projectID])
}

func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Subscriber
	for _, projectSubs := range h.subs {
		for _, sub := range projectSubs {
			all = append(all, sub)
		}
	}
	h.subs = make(map[string]map[string]*Subscriber)
	h.mu.Unlock()

	for _, sub := range all {
		metrics.AddSubscriber(-1)
		sub.close()
	}
}
