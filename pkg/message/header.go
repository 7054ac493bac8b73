package message

import (
	"iter"
	"strings"
)

type headerField struct {
	name  string
	value string
}

// Header is a case-preserving header collection. Lookups and overwrites
// compare names case-insensitively; serialisation uses the spelling of the
// last Set and the order in which names were first added.
type Header struct {
	fields []headerField
	index  map[string]int
}

func headerKey(name string) string {
	return strings.ToLower(name)
}

// Set stores value under name, replacing any previous value.
func (h *Header) Set(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	key := headerKey(name)
	if i, ok := h.index[key]; ok {
		h.fields[i] = headerField{name: name, value: value}
		return
	}
	h.index[key] = len(h.fields)
	h.fields = append(h.fields, headerField{name: name, value: value})
}

// Get returns the value stored under name, or "" when absent.
func (h *Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup returns the value stored under name and whether it is present.
func (h *Header) Lookup(name string) (string, bool) {
	i, ok := h.index[headerKey(name)]
	if !ok {
		return "", false
	}
	return h.fields[i].value, true
}

// Del removes name.
func (h *Header) Del(name string) {
	key := headerKey(name)
	i, ok := h.index[key]
	if !ok {
		return
	}
	h.fields = append(h.fields[:i], h.fields[i+1:]...)
	delete(h.index, key)
	for k, j := range h.index {
		if j > i {
			h.index[k] = j - 1
		}
	}
}

// Reset removes every header.
func (h *Header) Reset() {
	h.fields = h.fields[:0]
	clear(h.index)
}

// Len returns the number of headers.
func (h *Header) Len() int {
	return len(h.fields)
}

// All iterates over the headers in insertion order.
func (h *Header) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, f := range h.fields {
			if !yield(f.name, f.value) {
				return
			}
		}
	}
}

// Map returns a copy of the headers keyed by their stored spelling.
func (h *Header) Map() map[string]string {
	m := make(map[string]string, len(h.fields))
	for _, f := range h.fields {
		m[f.name] = f.value
	}
	return m
}
