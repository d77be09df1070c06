package attach

import (
	"maps"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"h2p/layout"
)

// OutlineEntry is bookmark collected during conversion.
type OutlineEntry struct {
	Level       int
	Title       string
	Destination string
}

// OutlineHandler builds document outline from elements listed in its level
// map. Handler without levels produces no outline.
type OutlineHandler struct {
	levels  map[string]int
	used    map[string]int
	entries []OutlineEntry
}

// DefaultOutlineLevels maps headings to outline levels.
func DefaultOutlineLevels() map[string]int {
	return map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}
}

// NewOutlineHandler creates handler for tag to level map.
func NewOutlineHandler(levels map[string]int) *OutlineHandler {
	h := &OutlineHandler{levels: make(map[string]int, len(levels))}
	for tag, level := range levels {
		if level > 0 {
			h.levels[strings.ToLower(tag)] = level
		}
	}
	h.Reset()
	return h
}

// Levels returns copy of tag to level map.
func (h *OutlineHandler) Levels() map[string]int {
	return maps.Clone(h.levels)
}

// Reset drops collected entries.
func (h *OutlineHandler) Reset() {
	h.used = make(map[string]int)
	h.entries = nil
}

// Level returns outline level of tag.
func (h *OutlineHandler) Level(tag string) (int, bool) {
	level, ok := h.levels[tag]
	return level, ok
}

// Reserve marks destination name as used by document.
func (h *OutlineHandler) Reserve(name string) {
	if name != "" {
		h.used[name]++
	}
}

// Add registers node as outline entry. Destination of node is used when
// present, otherwise one is made from title and stored on node.
func (h *OutlineHandler) Add(level int, node *layout.Node) {
	title := strings.Join(strings.Fields(node.PlainText()), " ")
	if title == "" {
		return
	}
	dest := node.Get(layout.PropDestination)
	if dest == "" {
		dest = h.unique(slug.Make(title))
		node.Set(layout.PropDestination, dest)
	}
	h.entries = append(h.entries, OutlineEntry{Level: level, Title: title, Destination: dest})
}

func (h *OutlineHandler) unique(name string) string {
	if name == "" {
		name = "outline"
	}
	base := name
	for n := 2; h.used[name] > 0; n++ {
		name = base + "-" + strconv.Itoa(n)
	}
	h.used[name]++
	return name
}

// Entries returns collected entries in document order.
func (h *OutlineHandler) Entries() []OutlineEntry {
	return h.entries
}
