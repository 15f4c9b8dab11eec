package treebuilder

import (
	"sort"
	"strings"

	"github.com/basalt-labs/html5/dom"
	"github.com/basalt-labs/html5/tokenizer"
)

type formattingEntry struct {
	marker    bool
	name      string
	attrs     []tokenizer.Attr
	node      *dom.Element
	signature string
}

// formattingList is the list of active formatting elements (WHATWG HTML
// §13.2.5.2), interleaved with markers that bound reconstruction and
// table/caption scope. Named so its maintenance operations (push,
// prune, dedupe, splice) live as methods next to the data instead of
// as loose TreeBuilder methods operating on a plain slice.
type formattingList []formattingEntry

func (l *formattingList) pushMarker() {
	*l = append(*l, formattingEntry{marker: true})
}

func (l *formattingList) clearUpToMarker() {
	for len(*l) > 0 {
		last := (*l)[len(*l)-1]
		*l = (*l)[:len(*l)-1]
		if last.marker {
			return
		}
	}
}

func (l *formattingList) appendEntry(name string, attrs []tokenizer.Attr, node *dom.Element) {
	entryAttrs := cloneTokenAttrs(attrs)
	*l = append(*l, formattingEntry{
		name:      name,
		attrs:     entryAttrs,
		node:      node,
		signature: attrsSignature(entryAttrs),
	})
}

// indexByName returns the most recent non-marker entry named name,
// scanning back only as far as the nearest marker.
func (l formattingList) indexByName(name string) (int, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		entry := l[i]
		if entry.marker {
			break
		}
		if entry.name == name {
			return i, true
		}
	}
	return -1, false
}

// indexByNode returns the entry bound to node, scanning the whole list
// (active formatting entries for a still-open element can sit behind a
// marker, e.g. inside a later table/caption).
func (l formattingList) indexByNode(node *dom.Element) (int, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		entry := l[i]
		if !entry.marker && entry.node == node {
			return i, true
		}
	}
	return -1, false
}

// indexOfNoahsArkDuplicate implements the "Noah's Ark clause": if three
// matching entries already sit in the current marker segment, the
// earliest of them is returned for removal.
func (l formattingList) indexOfNoahsArkDuplicate(name string, attrs []tokenizer.Attr) (int, bool) {
	sig := attrsSignature(attrs)
	var matches []int
	for i, entry := range l {
		if entry.marker {
			matches = matches[:0]
			continue
		}
		if entry.name == name && entry.signature == sig {
			matches = append(matches, i)
		}
	}
	if len(matches) >= 3 {
		return matches[0], true
	}
	return -1, false
}

func (l *formattingList) removeAt(index int) {
	if index < 0 || index >= len(*l) {
		return
	}
	copy((*l)[index:], (*l)[index+1:])
	*l = (*l)[:len(*l)-1]
}

func (l *formattingList) removeLastByName(name string) {
	for i := len(*l) - 1; i >= 0; i-- {
		entry := (*l)[i]
		if entry.marker {
			break
		}
		if entry.name == name {
			l.removeAt(i)
			return
		}
	}
}

// insertAt splices entry into the list at index, shifting later entries
// right. Used by the adoption agency to reinsert a relocated formatting
// entry at its bookmark position.
func (l *formattingList) insertAt(index int, entry formattingEntry) {
	if index < 0 {
		index = 0
	}
	if index > len(*l) {
		index = len(*l)
	}
	*l = append(*l, formattingEntry{})
	copy((*l)[index+1:], (*l)[index:])
	(*l)[index] = entry
}

func (tb *TreeBuilder) pushFormattingMarker() {
	tb.activeFormatting.pushMarker()
}

func (tb *TreeBuilder) clearActiveFormattingUpToMarker() {
	tb.activeFormatting.clearUpToMarker()
}

func (tb *TreeBuilder) appendActiveFormattingEntry(name string, attrs []tokenizer.Attr, node *dom.Element) {
	tb.activeFormatting.appendEntry(name, attrs, node)
}

func (tb *TreeBuilder) findActiveFormattingIndex(name string) (int, bool) {
	return tb.activeFormatting.indexByName(name)
}

func (tb *TreeBuilder) findActiveFormattingIndexByNode(node *dom.Element) (int, bool) {
	return tb.activeFormatting.indexByNode(node)
}

func (tb *TreeBuilder) findActiveFormattingDuplicate(name string, attrs []tokenizer.Attr) (int, bool) {
	return tb.activeFormatting.indexOfNoahsArkDuplicate(name, attrs)
}

func (tb *TreeBuilder) hasActiveFormattingEntry(name string) bool {
	_, ok := tb.findActiveFormattingIndex(name)
	return ok
}

func (tb *TreeBuilder) removeFormattingEntry(index int) {
	tb.activeFormatting.removeAt(index)
}

func (tb *TreeBuilder) removeLastActiveFormattingByName(name string) {
	tb.activeFormatting.removeLastByName(name)
}

func (tb *TreeBuilder) removeLastOpenElementByName(name string) {
	for i := len(tb.openElements) - 1; i >= 0; i-- {
		if tb.openElements[i].TagName == name {
			tb.openElements.removeAt(i)
			return
		}
	}
}

func (tb *TreeBuilder) reconstructActiveFormattingElements() {
	// Per WHATWG HTML §13.2.5.2.1 (reconstruct the active formatting elements).
	if len(tb.activeFormatting) == 0 {
		return
	}
	last := tb.activeFormatting[len(tb.activeFormatting)-1]
	if last.marker || tb.elementInOpenElements(last.node) {
		return
	}

	index := len(tb.activeFormatting) - 1
	for {
		index--
		if index < 0 {
			index = 0
			break
		}
		entry := tb.activeFormatting[index]
		if entry.marker || tb.elementInOpenElements(entry.node) {
			index++
			break
		}
	}

	for index < len(tb.activeFormatting) {
		entry := tb.activeFormatting[index]
		el := tb.insertElement(entry.name, cloneTokenAttrs(entry.attrs))
		tb.activeFormatting[index].node = el
		index++
	}
}

func (tb *TreeBuilder) elementInOpenElements(node *dom.Element) bool {
	for _, el := range tb.openElements {
		if el == node {
			return true
		}
	}
	return false
}

func cloneTokenAttrs(attrs []tokenizer.Attr) []tokenizer.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]tokenizer.Attr, len(attrs))
	copy(out, attrs)
	return out
}

func attrsSignature(attrs []tokenizer.Attr) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	values := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Namespace != "" {
			continue
		}
		keys = append(keys, a.Name)
		values[a.Name] = a.Value
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(values[k])
		sb.WriteByte(0)
	}
	return sb.String()
}
