package server

import (
	"encoding/json"
	"sync"

	"github.com/businesslike/lessonplay/internal/lesson"
)

// Message is an encoded session event ready to be streamed.
type Message struct {
	Type lesson.EventType
	Data []byte
}

// Broker is an in-process pub/sub for session events, keyed by session ID.
// It implements lesson.Sink.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Message]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan Message]struct{}),
	}
}

// Subscribe returns a channel that receives events for the given session.
func (b *Broker) Subscribe(sessionID string) chan Message {
	ch := make(chan Message, 16)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Message]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the session's subscribers.
func (b *Broker) Unsubscribe(sessionID string, ch chan Message) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

func encodeEvent(ev lesson.Event) (Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: ev.Type, Data: data}, nil
}

// stateMessage encodes the session's current state for a single new stream.
func stateMessage(sess *lesson.Session) (Message, error) {
	snap := sess.Snapshot()
	return encodeEvent(lesson.Event{Type: lesson.EventState, State: &snap})
}

// Publish sends an event to all subscribers of the given session.
func (b *Broker) Publish(sessionID string, ev lesson.Event) {
	msg, err := encodeEvent(ev)
	if err != nil {
		return
	}

	b.mu.RLock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
