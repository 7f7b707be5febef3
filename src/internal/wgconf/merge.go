package wgconf

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
)

// Placement declares where a field line is inserted when the field does
// not exist in the document yet. Exactly one of the two anchors is used:
// if AfterField is set the new line goes right after the first assignment
// of that sibling field, otherwise right after the AfterSection header.
type Placement struct {
	// AfterSection is a section header including brackets, e.g. "[Peer]".
	// Header matching is case-sensitive.
	AfterSection string
	// AfterField is a sibling field name. Field matching is
	// case-insensitive and tolerates internal whitespace.
	AfterField string
}

// AfterSection places a new field directly below a section header.
func AfterSection(header string) Placement {
	return Placement{AfterSection: header}
}

// AfterField places a new field directly below a sibling field line.
func AfterField(name string) Placement {
	return Placement{AfterField: name}
}

// FieldUpdate assigns a new value to one logical field of the document.
type FieldUpdate struct {
	// Name is the logical field name, e.g. "Address". It is also the key
	// used when the field has to be inserted as a new line.
	Name  string
	Value string
	Place Placement

	pattern *regexp.Regexp
}

// NewFieldUpdate builds a FieldUpdate for the given logical field.
func NewFieldUpdate(name, value string, place Placement) FieldUpdate {
	return FieldUpdate{
		Name:    name,
		Value:   value,
		Place:   place,
		pattern: keyPattern(name),
	}
}

// Matches reports whether a key token found in the document refers to
// this update's logical field.
func (u *FieldUpdate) Matches(key string) bool {
	if u.pattern == nil {
		u.pattern = keyPattern(u.Name)
	}
	return u.pattern.MatchString(key)
}

// keyPattern compiles a case-insensitive pattern for a logical field
// name that tolerates whitespace between its words, so "PrivateKey",
// "privatekey" and "Private Key" all refer to the same field.
func keyPattern(name string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString(`(?i)^`)
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			sb.WriteString(`[ \t]*`)
		}
		sb.WriteString(regexp.QuoteMeta(string(r)))
	}
	sb.WriteString(`$`)
	return regexp.MustCompile(sb.String())
}

// Merge applies a set of field updates to the document and returns the
// updated document.
//
// The document is scanned once, top to bottom. For every assignment line
// the still-pending updates are checked in order; the first one whose
// field matches the line's key replaces the line's value (keeping the
// original key spacing) and is marked resolved. Only the first occurrence
// of a field is updated; later duplicates are left untouched. Every line
// not consumed by a replacement is copied through unchanged.
//
// Updates that stayed pending after the scan are inserted as new
// "Key = Value" lines directly after their anchor. If an anchor cannot
// be found the whole merge fails with a placement error and no document
// is produced.
//
// Updates with an empty value are skipped entirely: they neither replace
// existing lines nor get inserted.
func Merge(doc Document, updates []FieldUpdate) (Document, error) {
	pending := make([]*FieldUpdate, 0, len(updates))
	for i := range updates {
		if updates[i].Value == "" {
			continue
		}
		pending = append(pending, &updates[i])
	}

	out := Document{
		Lines:        make([]Line, 0, len(doc.Lines)+len(pending)),
		finalNewline: doc.finalNewline,
	}

	for _, line := range doc.Lines {
		if line.Kind == LineAssign {
			if idx := matchPending(pending, line.Key); idx >= 0 {
				update := pending[idx]
				line.Raw = replaceValue(line.Raw, update.Value)
				pending = append(pending[:idx], pending[idx+1:]...)
			}
		}
		out.Lines = append(out.Lines, line)
	}

	for _, update := range pending {
		anchor := findAnchor(out.Lines, update.Place)
		if anchor < 0 {
			return Document{}, errors.NewPlacementError(
				fmt.Sprintf("could not place field %s", update.Name), nil)
		}
		inserted := Line{
			Raw:  update.Name + " = " + update.Value,
			Kind: LineAssign,
			Key:  update.Name,
		}
		out.Lines = append(out.Lines, Line{})
		copy(out.Lines[anchor+2:], out.Lines[anchor+1:])
		out.Lines[anchor+1] = inserted
	}

	return out, nil
}

// matchPending returns the index of the first pending update matching
// the key, or -1. First match wins per line.
func matchPending(pending []*FieldUpdate, key string) int {
	for i, update := range pending {
		if update.Matches(key) {
			return i
		}
	}
	return -1
}

// findAnchor scans the lines top to bottom for the update's anchor and
// returns its index, or -1 when the anchor does not exist.
func findAnchor(lines []Line, place Placement) int {
	if place.AfterField != "" {
		pattern := keyPattern(place.AfterField)
		for i, line := range lines {
			if line.Kind == LineAssign && pattern.MatchString(line.Key) {
				return i
			}
		}
		return -1
	}
	for i, line := range lines {
		if line.Kind == LineSection && line.Section == place.AfterSection {
			return i
		}
	}
	return -1
}
