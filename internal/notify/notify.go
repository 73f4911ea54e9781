// Package notify provides change notification for capture state.
//
// The notify package implements an observer pattern that lets hosts
// subscribe to the outputs of a capture machine (display snapshots, status
// flags, committed values) and receive callbacks when they change.
//
// Delivery is synchronous: Notify returns after every matching observer has
// run, so a single key event is fully published before the next one is
// processed.
package notify

import (
	"sort"
	"sync"
)

// Topic identifies a stream of changes. Topics are dot-separated; an
// observer subscribed to "capture" also receives "capture.display".
type Topic string

// Capture topics.
const (
	// TopicDisplay carries the displayed key sequence ([]string).
	TopicDisplay Topic = "capture.display"

	// TopicStatus carries status flags (the capture package's Status).
	TopicStatus Topic = "capture.status"

	// TopicValue carries a newly committed shortcut string.
	TopicValue Topic = "capture.value"
)

// Change represents a single published change.
type Change struct {
	// Topic identifies what changed.
	Topic Topic

	// OldValue is the previous value (may be nil).
	OldValue any

	// NewValue is the new value.
	NewValue any

	// Source identifies the publisher, typically a recorder id.
	Source string
}

// Observer is called when a change is published.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	topic    Topic
	notifier *Notifier
}

// Unsubscribe removes this subscription. It is safe to call more than once
// and on a nil subscription.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Topic returns the subscribed topic, or "" for global subscriptions.
func (s *Subscription) Topic() Topic {
	if s == nil {
		return ""
	}
	return s.topic
}

// Notifier manages change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Global observers that receive all changes
	globalObservers map[uint64]Observer

	// Topic-specific observers
	topicObservers map[Topic]map[uint64]Observer

	// Next subscription ID. IDs increase monotonically, which gives a
	// stable delivery order.
	nextID uint64

	closed bool
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{
		globalObservers: make(map[uint64]Observer),
		topicObservers:  make(map[Topic]map[uint64]Observer),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeTopic registers an observer for a topic and its children.
func (n *Notifier) SubscribeTopic(topic Topic, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.topicObservers[topic] == nil {
		n.topicObservers[topic] = make(map[uint64]Observer)
	}
	n.topicObservers[topic][id] = observer

	return &Subscription{id: id, topic: topic, notifier: n}
}

// Notify delivers a change to all matching observers, in subscription order.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}

	type entry struct {
		id  uint64
		obs Observer
	}
	var matched []entry

	for id, obs := range n.globalObservers {
		matched = append(matched, entry{id, obs})
	}
	for topic, observers := range n.topicObservers {
		if topic != change.Topic && !isParentTopic(topic, change.Topic) {
			continue
		}
		for id, obs := range observers {
			matched = append(matched, entry{id, obs})
		}
	}
	n.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })

	// Call observers outside the lock so they may subscribe or publish.
	for _, e := range matched {
		e.obs(change)
	}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	count := len(n.globalObservers)
	for _, observers := range n.topicObservers {
		count += len(observers)
	}
	return count
}

// Close stops all further delivery. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for topic, observers := range n.topicObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.topicObservers, topic)
		}
	}
}

// isParentTopic checks if parent is a parent topic of child.
// e.g., "capture" is parent of "capture.display".
func isParentTopic(parent, child Topic) bool {
	if len(parent) >= len(child) {
		return false
	}
	if parent == "" {
		return true
	}
	return child[:len(parent)] == parent && child[len(parent)] == '.'
}

// Batch collects changes and delivers them as a group.
// The capture machine uses a batch per event so observers only ever see
// fully reduced state.
type Batch struct {
	notifier *Notifier
	changes  []Change
}

// NewBatch creates a new batch for collecting changes.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Add adds a change to the batch.
func (b *Batch) Add(change Change) {
	b.changes = append(b.changes, change)
}

// Commit sends all batched changes to observers in the order they were added.
func (b *Batch) Commit() {
	changes := b.changes
	b.changes = nil

	for _, change := range changes {
		b.notifier.Notify(change)
	}
}
