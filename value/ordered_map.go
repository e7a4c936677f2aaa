package value

import (
	"iter"
	"strconv"
)

// Key is an ordered-map key: a string key when Name is non-nil, otherwise an
// integer index.
type Key struct {
	Name  *String
	Index int64
}

// StrKey builds a string key with fresh metadata.
func StrKey(s string) Key {
	return Key{Name: NewString(s)}
}

// IntKey builds an integer key.
func IntKey(i int64) Key {
	return Key{Index: i}
}

// IsString reports whether the key is a string key.
func (k Key) IsString() bool { return k.Name != nil }

// String returns the key for lookups and messages.
func (k Key) String() string {
	if k.Name != nil {
		return string(k.Name.Bytes)
	}
	return strconv.FormatInt(k.Index, 10)
}

type lookupKey struct {
	str   string
	index int64
	isStr bool
}

func (k Key) lookup() lookupKey {
	if k.Name != nil {
		return lookupKey{str: string(k.Name.Bytes), isStr: true}
	}
	return lookupKey{index: k.Index}
}

// Slot is one position in an OrderedMap. Deleted slots are tombstones and
// keep their position until the table is rebuilt.
type Slot struct {
	Key     Key
	Val     Value
	Deleted bool
}

// minTableSize mirrors the smallest hash table the host VM allocates.
const minTableSize = 8

// OrderedMap is a hash map that iterates in insertion order. Deleting an
// entry leaves a tombstone in its slot.
type OrderedMap struct {
	slots     []Slot
	index     map[lookupKey]int
	tableSize uint32
	live      int
	nextIndex int64
}

// NewOrderedMap creates an empty map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[lookupKey]int), tableSize: minTableSize}
}

func (m *OrderedMap) grow() {
	if m.index == nil {
		m.index = make(map[lookupKey]int)
	}
	if m.tableSize == 0 {
		m.tableSize = minTableSize
	}
	for uint32(len(m.slots)) >= m.tableSize {
		m.tableSize <<= 1
	}
}

// Set stores v under k, replacing in place when k is already present.
func (m *OrderedMap) Set(k Key, v Value) {
	m.grow()
	lk := k.lookup()
	if i, ok := m.index[lk]; ok {
		m.slots[i].Val = v
		return
	}
	m.index[lk] = len(m.slots)
	m.slots = append(m.slots, Slot{Key: k, Val: v})
	m.live++
	if !k.IsString() && k.Index >= m.nextIndex {
		m.nextIndex = k.Index + 1
	}
}

// SetString is Set with a string key.
func (m *OrderedMap) SetString(name string, v Value) {
	m.Set(StrKey(name), v)
}

// Append stores v under the next free integer index and returns that index.
func (m *OrderedMap) Append(v Value) int64 {
	idx := m.nextIndex
	m.Set(IntKey(idx), v)
	return idx
}

// Get looks up k.
func (m *OrderedMap) Get(k Key) (Value, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[k.lookup()]
	if !ok {
		return nil, false
	}
	return m.slots[i].Val, true
}

// Delete tombstones the slot holding k. It reports whether k was present.
func (m *OrderedMap) Delete(k Key) bool {
	if m == nil {
		return false
	}
	lk := k.lookup()
	i, ok := m.index[lk]
	if !ok {
		return false
	}
	delete(m.index, lk)
	m.slots[i] = Slot{Key: m.slots[i].Key, Deleted: true}
	m.live--
	return true
}

// AppendTombstone appends an already-deleted slot. Codecs use it to rebuild
// tables with the same slot layout as the host.
func (m *OrderedMap) AppendTombstone(k Key) {
	m.grow()
	m.slots = append(m.slots, Slot{Key: k, Deleted: true})
}

// Len returns the number of occupied slots.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return m.live
}

// Used returns the number of slots, tombstones included.
func (m *OrderedMap) Used() int {
	if m == nil {
		return 0
	}
	return len(m.slots)
}

// Capacity returns the allocated table size.
func (m *OrderedMap) Capacity() int {
	if m == nil {
		return 0
	}
	return int(m.tableSize)
}

// Slot returns the raw slot at position i.
func (m *OrderedMap) Slot(i int) Slot {
	return m.slots[i]
}

// Entries yields occupied slots in slot order, skipping tombstones.
func (m *OrderedMap) Entries() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		if m == nil {
			return
		}
		for i := range m.slots {
			s := &m.slots[i]
			if s.Deleted {
				continue
			}
			if !yield(s.Key, s.Val) {
				return
			}
		}
	}
}
