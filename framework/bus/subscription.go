package bus

import "sort"

// Subscription is an immutable (topic-pattern, handler, priority) triple.
// Identity and hashing use (Topic, Handler.ID) only — Priority is
// deliberately excluded so re-subscribing with a new priority is detected
// as a duplicate rather than an update (spec §3). "Changing" priority
// requires Unsubscribe then Subscribe.
type Subscription struct {
	Topic    string
	Handler  Handler
	Priority int
}

type subscriptionKey struct {
	topic     string
	handlerID string
}

func (s Subscription) key() subscriptionKey {
	return subscriptionKey{topic: s.Topic, handlerID: s.Handler.ID}
}

// subscriptionEntry is the subscription index's value: the subscription
// itself plus the sorted, duplicate-free list of concrete topics whose
// cached resolution currently contains it (invariant I1).
type subscriptionEntry struct {
	sub    Subscription
	topics []string
	seq    int // registration order, used to break priority ties deterministically
}

func (e *subscriptionEntry) addTopic(topic string) {
	i := sort.SearchStrings(e.topics, topic)
	if i < len(e.topics) && e.topics[i] == topic {
		return
	}
	e.topics = append(e.topics, "")
	copy(e.topics[i+1:], e.topics[i:])
	e.topics[i] = topic
}

func (e *subscriptionEntry) removeTopic(topic string) {
	i := sort.SearchStrings(e.topics, topic)
	if i >= len(e.topics) || e.topics[i] != topic {
		return
	}
	e.topics = append(e.topics[:i], e.topics[i+1:]...)
}

// subscriptionIndex is the set of active subscriptions. A map gives O(1)
// lookup by key; the parallel `order` slice preserves registration order
// so resolve's priority-tie tiebreak (spec §4.5: "the order they appeared
// in the pre-sort collection") is deterministic instead of depending on Go's
// randomized map iteration.
type subscriptionIndex struct {
	entries map[subscriptionKey]*subscriptionEntry
	order   []subscriptionKey
	nextSeq int
}

func newSubscriptionIndex() *subscriptionIndex {
	return &subscriptionIndex{entries: make(map[subscriptionKey]*subscriptionEntry)}
}

func (idx *subscriptionIndex) get(k subscriptionKey) (*subscriptionEntry, bool) {
	e, ok := idx.entries[k]
	return e, ok
}

func (idx *subscriptionIndex) insert(sub Subscription) *subscriptionEntry {
	k := sub.key()
	e := &subscriptionEntry{sub: sub, seq: idx.nextSeq}
	idx.nextSeq++
	idx.entries[k] = e
	idx.order = append(idx.order, k)
	return e
}

func (idx *subscriptionIndex) remove(k subscriptionKey) {
	delete(idx.entries, k)
	for i, ok := range idx.order {
		if ok == k {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
}

// patterns returns the sorted unique set of topic patterns currently
// subscribed (framework/bus.Bus.Topics).
func (idx *subscriptionIndex) patterns() []string {
	seen := make(map[string]struct{}, len(idx.order))
	out := make([]string, 0, len(idx.order))
	for _, k := range idx.order {
		if _, ok := seen[k.topic]; ok {
			continue
		}
		seen[k.topic] = struct{}{}
		out = append(out, k.topic)
	}
	sort.Strings(out)
	return out
}

// sortDescending orders subs by Priority descending, breaking ties by
// registration order ascending (stable, reproducible — invariant I2).
func sortDescending(subs []*subscriptionEntry) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].sub.Priority != subs[j].sub.Priority {
			return subs[i].sub.Priority > subs[j].sub.Priority
		}
		return subs[i].seq < subs[j].seq
	})
}
