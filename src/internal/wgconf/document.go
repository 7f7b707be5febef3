package wgconf

import "strings"

// LineKind classifies a single line of a tunnel config document.
type LineKind int

const (
	// LineOther is a blank line, a comment, or anything else that is
	// passed through untouched (including lines that look like an
	// assignment but have no parsable key).
	LineOther LineKind = iota
	// LineSection is a "[Name]" section header.
	LineSection
	// LineAssign is a "Key = Value" assignment.
	LineAssign
)

// Line is one line of a Document. Raw always holds the exact original
// text so unmodified lines round-trip byte for byte.
type Line struct {
	Raw     string
	Kind    LineKind
	Section string // bracket text for LineSection, e.g. "[Interface]"
	Key     string // trimmed key token for LineAssign
}

// Document is an ordered sequence of config lines. Order is significant
// and is preserved by every transform except explicit insertions.
type Document struct {
	Lines []Line

	// finalNewline records whether the source text ended with a newline,
	// so String can reproduce it.
	finalNewline bool
}

// Parse splits raw config text into a Document. Parsing never fails:
// anything that is not recognizably a section header or an assignment is
// kept as an opaque line.
func Parse(raw string) Document {
	doc := Document{finalNewline: strings.HasSuffix(raw, "\n")}
	text := raw
	if doc.finalNewline {
		text = strings.TrimSuffix(text, "\n")
	}
	if text == "" && !doc.finalNewline {
		return doc
	}
	for _, lineText := range strings.Split(text, "\n") {
		doc.Lines = append(doc.Lines, classifyLine(lineText))
	}
	return doc
}

// String renders the document back to config text.
func (d Document) String() string {
	var sb strings.Builder
	for i, line := range d.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line.Raw)
	}
	if d.finalNewline {
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Len returns the number of lines in the document.
func (d Document) Len() int {
	return len(d.Lines)
}

// Lookup returns the value of the first assignment of the given logical
// field, using the same loose key matching as updates. The second return
// value is false when the field is not present.
func (d Document) Lookup(name string) (string, bool) {
	pattern := keyPattern(name)
	for _, line := range d.Lines {
		if line.Kind != LineAssign || !pattern.MatchString(line.Key) {
			continue
		}
		idx := strings.Index(line.Raw, "=")
		return strings.TrimSpace(line.Raw[idx+1:]), true
	}
	return "", false
}

func classifyLine(raw string) Line {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return Line{Raw: raw, Kind: LineSection, Section: trimmed}
	}

	if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
		return Line{Raw: raw, Kind: LineOther}
	}

	if idx := strings.Index(raw, "="); idx >= 0 {
		key := strings.TrimSpace(raw[:idx])
		if key == "" {
			// Looks like an assignment but the key cannot be parsed.
			// Conservative pass-through, never fatal.
			return Line{Raw: raw, Kind: LineOther}
		}
		return Line{Raw: raw, Kind: LineAssign, Key: key}
	}

	return Line{Raw: raw, Kind: LineOther}
}

// replaceValue returns the assignment line text with its value portion
// replaced, keeping everything up to and including the spacing that
// followed the "=" in the original line.
func replaceValue(raw string, value string) string {
	idx := strings.Index(raw, "=")
	if idx < 0 {
		return raw
	}
	end := idx + 1
	for end < len(raw) && (raw[end] == ' ' || raw[end] == '\t') {
		end++
	}
	return raw[:end] + value
}
