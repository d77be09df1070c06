// Package counter keeps CSS counters while document tree is walked.
package counter

import (
	"slices"
	"strings"
)

// ListItem is the implicit counter incremented by list items.
const ListItem = "list-item"

// Manager holds counters of a single conversion. Values set by an element are
// kept in current scope. PushAll opens scope for children of the element and
// PopAll closes it, restoring values visible to the element.
//
// Target counters are two-phase: first reference to an element id which was
// not visited yet is registered as pending and resolves to nothing, once the
// element is visited its counters are remembered and next layout pass
// resolves the reference.
type Manager struct {
	current map[string]int
	frames  []map[string]int
	targets map[string]map[string][]int
	pending map[string]bool
}

// NewManager returns empty manager.
func NewManager() *Manager {
	return &Manager{
		current: make(map[string]int),
		targets: make(map[string]map[string][]int),
		pending: make(map[string]bool),
	}
}

// Reset instantiates counter in current scope.
func (m *Manager) Reset(name string, value int) {
	m.current[name] = value
}

// Set changes value of the innermost counter with given name, instantiating
// it when there is none.
func (m *Manager) Set(name string, value int) {
	if scope := m.lookup(name); scope != nil {
		scope[name] = value
		return
	}
	m.current[name] = value
}

// Increment adds delta to the innermost counter with given name. Counter
// which was never reset is instantiated with 0 first.
func (m *Manager) Increment(name string, delta int) {
	if scope := m.lookup(name); scope != nil {
		scope[name] += delta
		return
	}
	m.current[name] = delta
}

func (m *Manager) lookup(name string) map[string]int {
	if _, ok := m.current[name]; ok {
		return m.current
	}
	for i := len(m.frames) - 1; i >= 0; i-- {
		if _, ok := m.frames[i][name]; ok {
			return m.frames[i]
		}
	}
	return nil
}

// Value returns value of the innermost counter, 0 if it does not exist.
func (m *Manager) Value(name string) (int, bool) {
	if scope := m.lookup(name); scope != nil {
		return scope[name], true
	}
	return 0, false
}

// Resolve formats value of the innermost counter.
func (m *Manager) Resolve(name, style string) string {
	v, _ := m.Value(name)
	return Format(v, style)
}

// chain returns values of all nested counters with given name, outermost
// first.
func (m *Manager) chain(name string) []int {
	var values []int
	for _, f := range m.frames {
		if v, ok := f[name]; ok {
			values = append(values, v)
		}
	}
	if v, ok := m.current[name]; ok {
		values = append(values, v)
	}
	return values
}

// ResolveCounters formats all nested counters joined with separator as
// counters() function does.
func (m *Manager) ResolveCounters(name, sep, style string) string {
	return formatChain(m.chain(name), sep, style)
}

func formatChain(values []int, sep, style string) string {
	if len(values) == 0 {
		return Format(0, style)
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, Format(v, style))
	}
	return strings.Join(parts, sep)
}

// PushAll saves current scope and starts empty one for element children.
func (m *Manager) PushAll() {
	m.frames = append(m.frames, m.current)
	m.current = make(map[string]int)
}

// PopAll drops scope of children restoring saved one. Unbalanced call is
// ignored.
func (m *Manager) PopAll() {
	if len(m.frames) == 0 {
		return
	}
	m.current = m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]
}

// Depth returns number of open scopes.
func (m *Manager) Depth() int {
	return len(m.frames)
}

// VisitID remembers all counters visible to element with given id.
func (m *Manager) VisitID(id string) {
	if id == "" {
		return
	}
	snapshot := make(map[string][]int)
	for _, f := range append(slices.Clone(m.frames), m.current) {
		for name := range f {
			if _, done := snapshot[name]; !done {
				snapshot[name] = m.chain(name)
			}
		}
	}
	m.targets[id] = snapshot
}

// ResolveTarget formats counter of element with id as target-counter()
// does. When element was not visited yet reference is registered as pending
// and false is returned.
func (m *Manager) ResolveTarget(id, name, style string) (string, bool) {
	snapshot, ok := m.targets[id]
	if !ok {
		m.pending[id] = true
		return "", false
	}
	values := snapshot[name]
	if len(values) == 0 {
		return Format(0, style), true
	}
	return Format(values[len(values)-1], style), true
}

// ResolveTargetCounters formats nested counters of element with id as
// target-counters() does.
func (m *Manager) ResolveTargetCounters(id, name, sep, style string) (string, bool) {
	snapshot, ok := m.targets[id]
	if !ok {
		m.pending[id] = true
		return "", false
	}
	return formatChain(snapshot[name], sep, style), true
}

// Pending returns sorted ids referenced before being visited.
func (m *Manager) Pending() []string {
	ids := make([]string, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// HasResolvablePending reports whether another layout pass would resolve at
// least one pending reference.
func (m *Manager) HasResolvablePending() bool {
	for id := range m.pending {
		if _, ok := m.targets[id]; ok {
			return true
		}
	}
	return false
}

// StartPass drops counters and pending references before walking document
// again, remembered targets survive.
func (m *Manager) StartPass() {
	m.current = make(map[string]int)
	m.frames = nil
	m.pending = make(map[string]bool)
}

// Clear drops everything.
func (m *Manager) Clear() {
	m.StartPass()
	m.targets = make(map[string]map[string][]int)
}
