package cache

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process implementation of Cache and Bus. It backs the
// test suite and single-process development runs where no Redis is
// available; semantics mirror the Redis implementation, including TTL
// expiry and bounded-list trimming.
type Memory struct {
	mu        sync.Mutex
	values    map[string]memoryEntry
	zsets     map[string][]zMember
	lists     map[string][]string
	subs      []*memorySub
	published []Message
}

type memoryEntry struct {
	value    string
	expireAt time.Time
}

type zMember struct {
	member string
	score  float64
}

type memorySub struct {
	channels map[string]bool
	out      chan Message
}

func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]memoryEntry),
		zsets:  make(map[string][]zMember),
		lists:  make(map[string][]string),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.values[key]
	if !ok || m.expired(entry) {
		delete(m.values, key)
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expireAt = time.Now().Add(ttl)
	}
	m.values[key] = entry
	return nil
}

func (m *Memory) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	delete(m.zsets, key)
	delete(m.lists, key)
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.values[key]
	if !ok {
		return false, nil
	}
	if m.expired(entry) {
		delete(m.values, key)
		return false, nil
	}
	return true, nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if entry, ok := m.values[key]; ok && !m.expired(entry) {
		n, _ = strconv.ParseInt(entry.value, 10, 64)
	}
	n++
	m.values[key] = memoryEntry{value: strconv.FormatInt(n, 10)}
	return n, nil
}

func (m *Memory) ZAdd(_ context.Context, key, member string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.zsets[key]
	for i := range members {
		if members[i].member == member {
			members[i].score = score
			m.sortZSet(key, members)
			return nil
		}
	}
	members = append(members, zMember{member: member, score: score})
	m.sortZSet(key, members)
	return nil
}

func (m *Memory) sortZSet(key string, members []zMember) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].score < members[j].score
	})
	m.zsets[key] = members
}

func (m *Memory) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.zsets[key]
	from, to, ok := rangeBounds(int64(len(members)), start, stop)
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, to-from+1)
	for _, z := range members[from : to+1] {
		out = append(out, z.member)
	}
	return out, nil
}

func (m *Memory) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	members := m.zsets[key]
	reversed := make([]zMember, len(members))
	for i, z := range members {
		reversed[len(members)-1-i] = z
	}
	m.mu.Unlock()

	from, to, ok := rangeBounds(int64(len(reversed)), start, stop)
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, to-from+1)
	for _, z := range reversed[from : to+1] {
		out = append(out, z.member)
	}
	return out, nil
}

func (m *Memory) ZRem(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.zsets[key]
	for i := range members {
		if members[i].member == member {
			m.zsets[key] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) ZRemRangeByRank(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.zsets[key]
	from, to, ok := rangeBounds(int64(len(members)), start, stop)
	if !ok {
		return nil
	}
	m.zsets[key] = append(append([]zMember{}, members[:from]...), members[to+1:]...)
	return nil
}

func (m *Memory) LPush(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append([]string{value}, m.lists[key]...)
	return nil
}

func (m *Memory) LTrim(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	from, to, ok := rangeBounds(int64(len(list)), start, stop)
	if !ok {
		m.lists[key] = nil
		return nil
	}
	m.lists[key] = list[from : to+1]
	return nil
}

func (m *Memory) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	from, to, ok := rangeBounds(int64(len(list)), start, stop)
	if !ok {
		return nil, nil
	}
	return append([]string{}, list[from:to+1]...), nil
}

func (m *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := pattern
	if len(prefix) > 0 && prefix[len(prefix)-1] == '*' {
		prefix = prefix[:len(prefix)-1]
	}
	var keys []string
	for key, entry := range m.values {
		if m.expired(entry) {
			continue
		}
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Publish(_ context.Context, channel, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := Message{Channel: channel, Payload: payload}
	m.published = append(m.published, msg)
	for _, sub := range m.subs {
		if sub.channels[channel] {
			select {
			case sub.out <- msg:
			default:
			}
		}
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, channels ...string) (<-chan Message, func(), error) {
	sub := &memorySub{
		channels: make(map[string]bool, len(channels)),
		out:      make(chan Message, 16),
	}
	for _, channel := range channels {
		sub.channels[channel] = true
	}

	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()

	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s == sub {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				close(sub.out)
				return
			}
		}
	}
	return sub.out, unsubscribe, nil
}

// Published returns every message published so far, for assertions.
func (m *Memory) Published() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message{}, m.published...)
}

// List returns a copy of a raw list, for assertions.
func (m *Memory) List(key string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.lists[key]...)
}

func (m *Memory) expired(entry memoryEntry) bool {
	return !entry.expireAt.IsZero() && time.Now().After(entry.expireAt)
}

// rangeBounds resolves redis-style inclusive start/stop (negative counts
// from the end) against a length.
func rangeBounds(length, start, stop int64) (int64, int64, bool) {
	if start < 0 {
		start += length
	}
	if stop < 0 {
		stop += length
	}
	if start < 0 {
		start = 0
	}
	if stop >= length {
		stop = length - 1
	}
	if length == 0 || start > stop || start >= length {
		return 0, 0, false
	}
	return start, stop, true
}
