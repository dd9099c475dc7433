package lambda

import (
	"net/http"
	"sort"
	"strings"
)

// Header is an ordered multimap of HTTP header fields.
//
// A name keeps the spelling it had when it was first added; later lookups
// and additions match names case-insensitively. Keys are returned in
// insertion order, and values for a name keep the order they were added in.
//
// When a Header is split into single- and multi-valued buckets, a name with
// exactly one value is single-valued and a name with two or more values is
// multi-valued.
type Header struct {
	entries []headerEntry
	index   map[string]int
}

type headerEntry struct {
	name   string
	values []string
}

// NewHeader returns an empty Header.
func NewHeader() *Header {
	return &Header{index: make(map[string]int)}
}

// HeaderFromMap builds a Header from a flat single-valued map. Names are
// lower-cased and inserted in sorted order so the result is deterministic.
func HeaderFromMap(m map[string]string) *Header {
	h := NewHeader()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Add(strings.ToLower(k), m[k])
	}
	return h
}

// HeaderFromHTTP converts a net/http header. Keys are inserted in sorted
// order and keep their canonical net/http spelling.
func HeaderFromHTTP(hh http.Header) *Header {
	h := NewHeader()
	keys := make([]string, 0, len(hh))
	for k := range hh {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range hh[k] {
			h.Add(k, v)
		}
	}
	return h
}

func (h *Header) lookup(name string) (int, bool) {
	if h == nil || h.index == nil {
		return 0, false
	}
	i, ok := h.index[strings.ToLower(name)]
	return i, ok
}

// Add appends value to the values stored under name.
func (h *Header) Add(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	if i, ok := h.lookup(name); ok {
		h.entries[i].values = append(h.entries[i].values, value)
		return
	}
	h.index[strings.ToLower(name)] = len(h.entries)
	h.entries = append(h.entries, headerEntry{name: name, values: []string{value}})
}

// Set replaces all values stored under name with value. The name keeps its
// original position and spelling if it was already present.
func (h *Header) Set(name, value string) {
	if i, ok := h.lookup(name); ok {
		h.entries[i].values = []string{value}
		return
	}
	h.Add(name, value)
}

// Get returns the first value stored under name, or "".
func (h *Header) Get(name string) string {
	if i, ok := h.lookup(name); ok {
		return h.entries[i].values[0]
	}
	return ""
}

// Has reports whether name is present.
func (h *Header) Has(name string) bool {
	_, ok := h.lookup(name)
	return ok
}

// Values returns the values stored under name. The returned slice is not a
// copy.
func (h *Header) Values(name string) []string {
	if i, ok := h.lookup(name); ok {
		return h.entries[i].values
	}
	return nil
}

// Del removes name and all its values.
func (h *Header) Del(name string) {
	i, ok := h.lookup(name)
	if !ok {
		return
	}
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	delete(h.index, strings.ToLower(name))
	for j := i; j < len(h.entries); j++ {
		h.index[strings.ToLower(h.entries[j].name)] = j
	}
}

// Keys returns the header names in insertion order.
func (h *Header) Keys() []string {
	if h == nil {
		return nil
	}
	keys := make([]string, len(h.entries))
	for i, e := range h.entries {
		keys[i] = e.name
	}
	return keys
}

// Len returns the number of distinct names.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Clone returns a deep copy of h.
func (h *Header) Clone() *Header {
	c := NewHeader()
	if h == nil {
		return c
	}
	for _, e := range h.entries {
		for _, v := range e.values {
			c.Add(e.name, v)
		}
	}
	return c
}

// ToHTTP converts h to a net/http header.
func (h *Header) ToHTTP() http.Header {
	hh := make(http.Header, h.Len())
	if h == nil {
		return hh
	}
	for _, e := range h.entries {
		for _, v := range e.values {
			hh.Add(e.name, v)
		}
	}
	return hh
}
