package attach

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"h2p/css"
	"h2p/dom"
	"h2p/layout"
)

// fieldName returns unique name of form field. Radio buttons share name of
// their group, nameless fields get generated name when AcroForm is created.
func (c *ProcessorContext) fieldName(el *html.Node, kind string) string {
	name := strings.TrimSpace(dom.Attr(el, "name"))
	if name == "" {
		if !c.props.CreateAcroForm {
			return ""
		}
		name = "field-" + uuid.NewString()
	}
	if kind == "radio" {
		c.fields[name] = max(c.fields[name], 1)
		return name
	}
	c.fields[name]++
	if n := c.fields[name]; n > 1 {
		c.log.Debug("Duplicate form field name", zap.String("name", name), zap.Int("count", n))
		name += "_" + strconv.Itoa(n)
	}
	return name
}

// FieldCount returns number of distinct form field names seen so far.
func (c *ProcessorContext) FieldCount() int {
	return len(c.fields)
}

func newField(el *html.Node, kind string, ctx *ProcessorContext) *layout.Node {
	n := layout.New(layout.KindFormField, dom.Tag(el))
	n.Set(layout.PropFieldType, kind)
	n.Set(layout.PropFieldName, ctx.fieldName(el, kind))
	return n
}

// fieldWorker produces form field collecting its text as value or label.
type fieldWorker struct {
	base
	node  *layout.Node
	text  strings.Builder
	apply func(w *fieldWorker)
}

func (w *fieldWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	w.text.WriteString(text)
	return true
}

func (w *fieldWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	for _, r := range results(child) {
		w.text.WriteString(r.PlainText())
	}
	return true
}

func (w *fieldWorker) ProcessEnd(*ProcessorContext) {
	if w.apply != nil && w.node != nil {
		w.apply(w)
	}
}

func (w *fieldWorker) ElementResult() *layout.Node { return w.node }

func newInputWorker(el *html.Node, styles css.Styles, ctx *ProcessorContext) Worker {
	w := &fieldWorker{base: base{el: el, styles: styles}}
	kind := strings.ToLower(strings.TrimSpace(dom.Attr(el, "type")))
	if kind == "" {
		kind = "text"
	}
	if kind == "hidden" {
		return w
	}
	w.node = newField(el, kind, ctx)
	value, hasValue := dom.LookupAttr(el, "value")
	switch kind {
	case "checkbox", "radio":
		if dom.HasAttr(el, "checked") {
			w.node.Set(layout.PropFieldChecked, "true")
		}
		if !hasValue {
			value = "on"
		}
	case "submit":
		if !hasValue {
			value = "Submit"
		}
		w.node.Set(layout.PropFieldLabel, value)
	case "reset":
		if !hasValue {
			value = "Reset"
		}
		w.node.Set(layout.PropFieldLabel, value)
	case "button":
		w.node.Set(layout.PropFieldLabel, value)
	default:
		if !hasValue {
			value = dom.Attr(el, "placeholder")
		}
	}
	w.node.Set(layout.PropFieldValue, value)
	return w
}

func newTextAreaWorker(el *html.Node, styles css.Styles, ctx *ProcessorContext) Worker {
	w := &fieldWorker{base: base{el: el, styles: styles}, node: newField(el, "textarea", ctx)}
	w.apply = func(w *fieldWorker) {
		// leading line feed belongs to markup
		value := strings.TrimPrefix(w.text.String(), "\n")
		if value == "" {
			value = dom.Attr(w.el, "placeholder")
		}
		w.node.Set(layout.PropFieldValue, value)
	}
	return w
}

func newButtonWorker(el *html.Node, styles css.Styles, ctx *ProcessorContext) Worker {
	kind := strings.ToLower(strings.TrimSpace(dom.Attr(el, "type")))
	if kind == "" {
		kind = "submit"
	}
	w := &fieldWorker{base: base{el: el, styles: styles}, node: newField(el, "button", ctx)}
	w.node.Set(layout.PropFieldValue, dom.Attr(el, "value"))
	w.apply = func(w *fieldWorker) {
		label := strings.Join(strings.Fields(w.text.String()), " ")
		if label == "" {
			label = strings.ToUpper(kind[:1]) + kind[1:]
		}
		w.node.Set(layout.PropFieldLabel, label)
	}
	return w
}

// optionWorker collects option of select element.
type optionWorker struct {
	base
	text     strings.Builder
	value    string
	selected bool
}

func newOptionWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &optionWorker{base: base{el: el, styles: styles}, selected: dom.HasAttr(el, "selected")}
}

func (w *optionWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	w.text.WriteString(text)
	return true
}

func (w *optionWorker) ProcessTagChild(Worker, *ProcessorContext) bool { return true }

func (w *optionWorker) ProcessEnd(*ProcessorContext) {
	w.value = strings.Join(strings.Fields(w.text.String()), " ")
	if v, ok := dom.LookupAttr(w.el, "value"); ok {
		w.value = v
	}
}

func (w *optionWorker) ElementResult() *layout.Node { return nil }

// selectWorker produces choice field from options, optgroup content is
// flattened.
type selectWorker struct {
	base
	node    *layout.Node
	options []string
	value   string
}

func newSelectWorker(el *html.Node, styles css.Styles, ctx *ProcessorContext) Worker {
	return &selectWorker{base: base{el: el, styles: styles}, node: newField(el, "select", ctx)}
}

func (w *selectWorker) ProcessContent(string, *ProcessorContext) bool { return true }

func (w *selectWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	switch c := child.(type) {
	case *optionWorker:
		w.options = append(w.options, c.value)
		if c.selected || w.value == "" && len(w.options) == 1 {
			w.value = c.value
		}
	case *selectWorker:
		// nested select is not valid markup, its options are merged
		w.options = append(w.options, c.options...)
	}
	return true
}

func (w *selectWorker) ProcessEnd(*ProcessorContext) {
	w.node.Set(layout.PropFieldOptions, strings.Join(w.options, "|"))
	w.node.Set(layout.PropFieldValue, w.value)
	if dom.HasAttr(w.el, "multiple") {
		w.node.Set(layout.PropFieldType, "list")
	}
}

func (w *selectWorker) ElementResult() *layout.Node { return w.node }
