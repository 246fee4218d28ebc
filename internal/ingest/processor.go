package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/prismsearch/prism/internal/perr"
)

// Processor is a pure Document -> Document transform (spec §4.6). Mutation
// of the owned input document is allowed; processors must not retain a
// reference to it afterward.
type Processor interface {
	Process(d Document) (Document, error)
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(Document) (Document, error)

func (f ProcessorFunc) Process(d Document) (Document, error) { return f(d) }

// nowExpansion is the literal set(field, "{{_now}}") expands to: the
// current RFC-3339 timestamp (spec §4.6).
const nowExpansion = "{{_now}}"

// now is overridable in tests so the expansion is deterministic there.
var now = time.Now

// Lowercase lowercases a string field in place. Fails if the field is
// missing or non-string (spec §4.6).
func Lowercase(field string) Processor {
	return ProcessorFunc(func(d Document) (Document, error) {
		v, ok := d.Fields[field]
		if !ok {
			return d, perr.New(perr.KindInvalidQuery, fmt.Sprintf("lowercase: field %q is missing", field))
		}
		s, ok := v.(string)
		if !ok {
			return d, perr.New(perr.KindInvalidQuery, fmt.Sprintf("lowercase: field %q is not a string", field))
		}
		d.Fields[field] = strings.ToLower(s)
		return d, nil
	})
}

// HTMLStrip removes content between '<' and '>' from a string field with a
// single-pass state machine (spec §4.6). A field that is missing or
// non-string is left untouched.
func HTMLStrip(field string) Processor {
	return ProcessorFunc(func(d Document) (Document, error) {
		v, ok := d.Fields[field].(string)
		if !ok {
			return d, nil
		}
		d.Fields[field] = stripHTML(v)
		return d, nil
	})
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Set assigns value to field, expanding the literal "{{_now}}" to the
// current RFC-3339 timestamp (spec §4.6).
func Set(field string, value any) Processor {
	return ProcessorFunc(func(d Document) (Document, error) {
		if s, ok := value.(string); ok && s == nowExpansion {
			d.Fields[field] = now().UTC().Format(time.RFC3339)
		} else {
			d.Fields[field] = value
		}
		return d, nil
	})
}

// Remove deletes field; a no-op if it is already absent (spec §4.6).
func Remove(field string) Processor {
	return ProcessorFunc(func(d Document) (Document, error) {
		delete(d.Fields, field)
		return d, nil
	})
}

// Rename moves the value at from to to. Fails if from is absent (spec
// §4.6).
func Rename(from, to string) Processor {
	return ProcessorFunc(func(d Document) (Document, error) {
		v, ok := d.Fields[from]
		if !ok {
			return d, perr.New(perr.KindInvalidQuery, "rename: field is missing: "+from)
		}
		delete(d.Fields, from)
		d.Fields[to] = v
		return d, nil
	})
}
