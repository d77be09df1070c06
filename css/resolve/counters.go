package resolve

import (
	"strconv"

	"h2p/css"
	"h2p/css/counter"
)

type counterOp struct {
	name  string
	value int
}

// parseCounterOps parses counter-reset/set/increment value: names each
// optionally followed by integer.
func parseCounterOps(value string, def int) []counterOp {
	if value == "" || value == "none" {
		return nil
	}
	var ops []counterOp
	for _, p := range css.SplitValues(value) {
		if n, err := strconv.Atoi(p); err == nil {
			if len(ops) > 0 {
				ops[len(ops)-1].value = n
			}
			continue
		}
		ops = append(ops, counterOp{name: p, value: def})
	}
	return ops
}

// applyCounters executes counter operations of element in CSS order: reset,
// increment, set. List items increment list-item implicitly.
func applyCounters(s css.Styles, m *counter.Manager) {
	for _, op := range parseCounterOps(s["counter-reset"], 0) {
		m.Reset(op.name, op.value)
	}

	incs := parseCounterOps(s["counter-increment"], 1)
	listItem := false
	for _, op := range incs {
		if op.name == counter.ListItem {
			listItem = true
		}
		m.Increment(op.name, op.value)
	}
	if !listItem && s["display"] == "list-item" {
		m.Increment(counter.ListItem, 1)
	}

	for _, op := range parseCounterOps(s["counter-set"], 0) {
		m.Set(op.name, op.value)
	}
}
