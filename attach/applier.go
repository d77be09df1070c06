package attach

import (
	"maps"
	"strings"

	"go.uber.org/zap"

	"h2p/css"
	"h2p/dom"
	"h2p/layout"
)

// Applier transfers computed styles of element onto layout produced by its
// worker.
type Applier interface {
	Apply(ctx *ProcessorContext, w Worker, styles css.Styles)
}

// ApplierFunc adapts function to Applier.
type ApplierFunc func(ctx *ProcessorContext, w Worker, styles css.Styles)

func (f ApplierFunc) Apply(ctx *ProcessorContext, w Worker, styles css.Styles) {
	f(ctx, w, styles)
}

// ApplierRegistry maps worker kinds to appliers. Registry is immutable.
type ApplierRegistry struct {
	appliers map[Kind]Applier
}

// DefaultAppliers returns appliers of built-in workers.
func DefaultAppliers() *ApplierRegistry {
	block := ApplierFunc(applyBlock)
	inline := ApplierFunc(applyInline)
	form := ApplierFunc(applyFormField)
	return &ApplierRegistry{appliers: map[Kind]Applier{
		KindBody:        block,
		KindDiv:         block,
		KindParagraph:   block,
		KindHeading:     block,
		KindPre:         block,
		KindCaption:     block,
		KindInlineBlock: block,
		KindSpan:        inline,
		KindLink:        ApplierFunc(applyLink),
		KindImage:       ApplierFunc(applyImage),
		KindRule:        ApplierFunc(applyRule),
		KindList:        ApplierFunc(applyList),
		KindListItem:    block,
		KindTable:       ApplierFunc(applyTable),
		KindTableCell:   ApplierFunc(applyCell),
		KindInput:       form,
		KindTextArea:    form,
		KindSelect:      form,
		KindButton:      form,
	}}
}

// WithApplier returns registry using a for kind, nil removes applier.
func (r *ApplierRegistry) WithApplier(kind Kind, a Applier) *ApplierRegistry {
	c := &ApplierRegistry{appliers: maps.Clone(r.appliers)}
	if a == nil {
		delete(c.appliers, kind)
	} else {
		c.appliers[kind] = a
	}
	return c
}

// Get returns applier for kind, nil if there is none.
func (r *ApplierRegistry) Get(kind Kind) Applier {
	return r.appliers[kind]
}

// setIf sets property unless value is one of skipped ones.
func setIf(n *layout.Node, p layout.Property, value string, skip ...string) {
	if value == "" {
		return
	}
	for _, s := range skip {
		if value == s {
			return
		}
	}
	n.Set(p, value)
}

// applyText sets font and text properties. Family is resolved against
// available fonts.
func applyText(ctx *ProcessorContext, n *layout.Node, styles css.Styles) {
	var families []string
	for _, f := range css.SplitComma(styles.Get("font-family")) {
		families = append(families, css.Unquote(f))
	}
	n.Set(layout.PropFontFamily, ctx.Fonts.Resolve(families))
	setIf(n, layout.PropFontSize, styles.Get("font-size"))
	setIf(n, layout.PropFontWeight, styles.Get("font-weight"), "normal", "400")
	setIf(n, layout.PropFontStyle, styles.Get("font-style"), "normal")
	setIf(n, layout.PropColor, styles.Get("color"), "black", "currentcolor")
	setIf(n, layout.PropDecoration, styles.Get("text-decoration-line"), "none")
	setIf(n, layout.PropLineHeight, styles.Get("line-height"), "normal")
	setIf(n, layout.PropLetterSpacing, styles.Get("letter-spacing"), "normal", "0", "0pt")
	setIf(n, layout.PropWordSpacing, styles.Get("word-spacing"), "normal", "0", "0pt")
	setIf(n, layout.PropDirection, styles.Get("direction"), "ltr")
	setIf(n, layout.PropLang, styles.Get("lang"))
}

func applyBackground(ctx *ProcessorContext, n *layout.Node, styles css.Styles) {
	setIf(n, layout.PropBackground, styles.Get("background-color"), "transparent")
	if src, ok := css.URLArgument(styles.Get("background-image")); ok {
		uri, err := ctx.Resources.ResolveURI(src)
		if err != nil {
			ctx.log.Warn("Unable to resolve background image", zap.String("src", src), zap.Error(err))
			return
		}
		n.Set(layout.PropBackgroundImg, uri)
	}
}

var sides = []string{"top", "right", "bottom", "left"}

func applyBox(n *layout.Node, styles css.Styles) {
	for _, side := range sides {
		setIf(n, layout.BoxProperty("margin", side), styles.Get("margin-"+side), "0", "0pt")
		setIf(n, layout.BoxProperty("padding", side), styles.Get("padding-"+side), "0", "0pt")
		style := styles.Get("border-" + side + "-style")
		if style == "none" || style == "hidden" {
			continue
		}
		n.Set(layout.BoxProperty("border", side, "style"), style)
		setIf(n, layout.BoxProperty("border", side, "width"), styles.Get("border-"+side+"-width"))
		color := styles.Get("border-" + side + "-color")
		if color == "currentcolor" {
			color = styles.Get("color")
		}
		setIf(n, layout.BoxProperty("border", side, "color"), color)
	}
}

func applySize(n *layout.Node, styles css.Styles) {
	setIf(n, layout.PropWidth, styles.Get("width"), "auto")
	setIf(n, layout.PropHeight, styles.Get("height"), "auto")
	setIf(n, layout.PropMinWidth, styles.Get("min-width"), "auto", "0")
	setIf(n, layout.PropMinHeight, styles.Get("min-height"), "auto", "0")
	setIf(n, layout.PropMaxWidth, styles.Get("max-width"), "none")
	setIf(n, layout.PropMaxHeight, styles.Get("max-height"), "none")
}

// applyFlow sets floating and page break properties.
func applyFlow(n *layout.Node, styles css.Styles) {
	setIf(n, layout.PropFloat, styles.Get("float"), "none")
	setIf(n, layout.PropClear, styles.Get("clear"), "none")
	for p, value := range map[layout.Property]string{
		layout.PropBreakBefore: styles.Get("break-before"),
		layout.PropBreakAfter:  styles.Get("break-after"),
	} {
		switch value {
		case "page", "always", "left", "right", "recto", "verso":
			n.Set(p, "page")
		case "avoid", "avoid-page":
			n.Set(p, "avoid")
		}
	}
	if styles.Get("break-inside") == "avoid" || styles.Get("page-break-inside") == "avoid" {
		n.Set(layout.PropKeepTogether, "true")
	}
	setIf(n, layout.PropOrphans, styles.Get("orphans"), "2")
	setIf(n, layout.PropWidows, styles.Get("widows"), "2")
	setIf(n, layout.PropOpacity, styles.Get("opacity"), "1")
}

func applyBlockNode(ctx *ProcessorContext, n *layout.Node, styles css.Styles) {
	setIf(n, layout.PropDisplay, styles.Get("display"), "block")
	applyText(ctx, n, styles)
	setIf(n, layout.PropTextAlign, styles.Get("text-align"), "start")
	setIf(n, layout.PropTextIndent, styles.Get("text-indent"), "0", "0pt")
	setIf(n, layout.PropWhiteSpace, styles.Get("white-space"), "normal")
	applyBackground(ctx, n, styles)
	applyBox(n, styles)
	applySize(n, styles)
	applyFlow(n, styles)
}

func applyBlock(ctx *ProcessorContext, w Worker, styles css.Styles) {
	if n := w.ElementResult(); n != nil {
		applyBlockNode(ctx, n, styles)
	}
}

// applyInline sets inline properties on every element of span. Properties
// already set by nested spans are kept.
func applyInline(ctx *ProcessorContext, w Worker, styles css.Styles) {
	props := layout.New(layout.KindText, "")
	applyText(ctx, props, styles)
	setIf(props, layout.PropBackground, styles.Get("background-color"), "transparent")
	setIf(props, layout.PropVerticalAlign, styles.Get("vertical-align"), "baseline")
	setIf(props, layout.PropOpacity, styles.Get("opacity"), "1")
	for _, n := range results(w) {
		for p, v := range props.Props {
			if !n.Has(p) {
				n.Set(p, v)
			}
		}
	}
}

// applyLink marks content of anchor as link. Fragment links stay internal,
// everything else is resolved against document base.
func applyLink(ctx *ProcessorContext, w Worker, styles css.Styles) {
	applyInline(ctx, w, styles)
	ew, ok := w.(elementWorker)
	if !ok {
		return
	}
	href := strings.TrimSpace(dom.Attr(ew.Element(), "href"))
	if href == "" {
		return
	}
	if !strings.HasPrefix(href, "#") {
		uri, err := ctx.Resources.ResolveURI(href)
		if err != nil {
			ctx.log.Warn("Unable to resolve link", zap.String("href", href), zap.Error(err))
			return
		}
		href = uri
	}
	for _, n := range results(w) {
		if !n.Has(layout.PropLink) {
			n.Set(layout.PropLink, href)
		}
	}
}

func applyImage(ctx *ProcessorContext, w Worker, styles css.Styles) {
	n := w.ElementResult()
	if n == nil {
		return
	}
	if n.Kind == layout.KindText {
		applyText(ctx, n, styles)
		return
	}
	setIf(n, layout.PropDisplay, styles.Get("display"), "inline")
	setIf(n, layout.PropVerticalAlign, styles.Get("vertical-align"), "baseline")
	applyBox(n, styles)
	applySize(n, styles)
	applyFlow(n, styles)
}

func applyRule(ctx *ProcessorContext, w Worker, styles css.Styles) {
	n := w.ElementResult()
	applyBox(n, styles)
	applySize(n, styles)
	setIf(n, layout.PropColor, styles.Get("color"), "black")
}

func applyList(ctx *ProcessorContext, w Worker, styles css.Styles) {
	n := w.ElementResult()
	applyBlockNode(ctx, n, styles)
	if ew, ok := w.(elementWorker); ok {
		setIf(n, layout.PropListStart, dom.Attr(ew.Element(), "start"))
	}
}

func applyTable(ctx *ProcessorContext, w Worker, styles css.Styles) {
	tw, ok := w.(*tableWorker)
	if !ok {
		applyBlock(ctx, w, styles)
		return
	}
	applyBlockNode(ctx, tw.table, styles)
	tw.table.Set(layout.PropDisplay, "")
	setIf(tw.table, layout.PropCollapse, styles.Get("border-collapse"), "separate")
	setIf(tw.table, layout.PropSpacing, styles.Get("border-spacing"))
	setIf(tw.table, layout.PropCaptionSide, styles.Get("caption-side"), "top")
}

func applyCell(ctx *ProcessorContext, w Worker, styles css.Styles) {
	n := w.ElementResult()
	applyBlockNode(ctx, n, styles)
	n.Set(layout.PropDisplay, "")
	setIf(n, layout.PropVerticalAlign, styles.Get("vertical-align"), "baseline")
	if ew, ok := w.(elementWorker); ok {
		setIf(n, layout.PropRowSpan, strings.TrimSpace(dom.Attr(ew.Element(), "rowspan")), "1")
		setIf(n, layout.PropColSpan, strings.TrimSpace(dom.Attr(ew.Element(), "colspan")), "1")
	}
}

func applyFormField(ctx *ProcessorContext, w Worker, styles css.Styles) {
	n := w.ElementResult()
	if n == nil {
		return
	}
	applyText(ctx, n, styles)
	setIf(n, layout.PropDisplay, styles.Get("display"), "inline")
	applyBackground(ctx, n, styles)
	applyBox(n, styles)
	applySize(n, styles)
}
