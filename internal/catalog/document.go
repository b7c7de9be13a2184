package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

const indentUnit = "    "

// Document is a careers document: a JSON object whose top-level key order is
// preserved and whose values are kept as raw JSON.
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]json.RawMessage)}
}

// ParseDocument decodes a JSON object, remembering top-level key order. A
// repeated key keeps its first position and its last value.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrInvalidDocument
	}

	doc := NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidDocument, tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: value of %q: %v", ErrInvalidDocument, key, err)
		}
		doc.Set(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidDocument)
	}
	return doc, nil
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	return slices.Clone(d.keys)
}

// Len returns the number of top-level keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Get returns the raw value stored under key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Set stores raw under key, keeping the key's position if it already exists.
func (d *Document) Set(key string, raw json.RawMessage) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = raw
}

// Clone returns a copy that shares no mutable state with d.
func (d *Document) Clone() *Document {
	out := &Document{
		keys:   slices.Clone(d.keys),
		values: make(map[string]json.RawMessage, len(d.values)),
	}
	for k, v := range d.values {
		out.values[k] = slices.Clone(v)
	}
	return out
}

// MarshalJSON writes the document compactly, in key order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if err := json.Compact(&buf, d.values[key]); err != nil {
			return nil, fmt.Errorf("compact %q: %w", key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent writes the document with four-space indentation and
// non-ASCII text left unescaped.
func (d *Document) MarshalIndent() ([]byte, error) {
	if len(d.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range d.keys {
		k, err := marshalJSON(key)
		if err != nil {
			return nil, err
		}
		buf.WriteString(indentUnit)
		buf.Write(k)
		buf.WriteString(": ")
		if err := json.Indent(&buf, d.values[key], indentUnit, indentUnit); err != nil {
			return nil, fmt.Errorf("indent %q: %w", key, err)
		}
		if i < len(d.keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SpliceSection returns a copy of doc whose section for kind is replaced by
// h. Every other key is passed through unchanged and in place; whatever the
// section held before is discarded.
func SpliceSection(doc *Document, kind SectionKind, h *Hierarchy) (*Document, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, kind)
	}
	if doc == nil {
		doc = NewDocument()
	}
	raw, err := marshalJSON(h)
	if err != nil {
		return nil, fmt.Errorf("encode %s section: %w", kind, err)
	}
	out := doc.Clone()
	out.Set(kind.Key(), raw)
	return out, nil
}
