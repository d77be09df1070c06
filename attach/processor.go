package attach

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"h2p/css"
	"h2p/css/resolve"
	"h2p/dom"
	"h2p/layout"
)

// Processor walks document tree feeding workers.
type Processor struct {
	ctx   *ProcessorContext
	ids   []string
	roots []*layout.Node
}

// NewProcessor creates processor working in ctx.
func NewProcessor(ctx *ProcessorContext) *Processor {
	return &Processor{ctx: ctx}
}

// Context returns processor context.
func (p *Processor) Context() *ProcessorContext {
	return p.ctx
}

// ProcessElements converts document (or fragment) to top level layout
// elements. Walk is repeated while forward target counter references can be
// resolved by another pass, up to LimitOfLayouts passes.
func (p *Processor) ProcessElements(root *html.Node) ([]*layout.Node, error) {
	if root == nil {
		return nil, errors.New("nothing to process")
	}
	ctx := p.ctx
	ctx.Reset()

	styles, err := resolve.New(root, resolve.Options{
		Device:     *ctx.props.Device,
		Resources:  ctx.Resources,
		DefaultCSS: ctx.props.DefaultCSS,
		UserCSS:    ctx.props.UserCSS,
	}, ctx.log)
	if err != nil {
		return nil, err
	}
	ctx.Styles = styles

	p.collectLinks(root)
	p.loadFonts()

	for pass := 1; ; pass++ {
		ctx.startPass()
		for _, id := range p.ids {
			ctx.Outline.Reserve(id)
		}
		p.roots = nil
		p.visit(root)
		if pass >= ctx.props.LimitOfLayouts || !ctx.Counters.HasResolvablePending() {
			ctx.log.Debug("Layout finished", zap.Int("passes", pass), zap.Strings("unresolved", ctx.Counters.Pending()))
			break
		}
		ctx.log.Debug("Relayout to resolve target counters", zap.Int("pass", pass+1))
	}
	return p.roots, nil
}

// ProcessDocument converts document to layout document with metadata, page
// setup and outline.
func (p *Processor) ProcessDocument(root *html.Node) (*layout.Document, error) {
	elements, err := p.ProcessElements(root)
	if err != nil {
		return nil, err
	}
	ctx := p.ctx

	doc := layout.NewDocument(uuid.NewString())
	doc.Title = ctx.Title()
	for k, v := range ctx.Meta() {
		doc.Meta[k] = v
	}
	doc.Lang = documentLanguage(root)
	doc.ImmediateFlush = ctx.props.ImmediateFlush
	doc.ContinuousContainer = ctx.props.ContinuousContainer
	doc.AcroForm = ctx.props.CreateAcroForm && ctx.FieldCount() > 0
	p.pageSetup(doc)

	for _, e := range elements {
		if doc.Add(e) {
			continue
		}
		// only stray cells end up here, keep their content
		wrapper := layout.New(layout.KindDiv, e.Tag)
		wrapper.Children = e.Children
		if !doc.Add(wrapper) {
			ctx.log.Warn("Dropping element which cannot be placed into document", zap.Stringer("kind", e.Kind))
		}
	}
	for _, e := range ctx.Outline.Entries() {
		doc.AddOutline(e.Level, e.Title, e.Destination)
	}
	return doc, nil
}

func documentLanguage(root *html.Node) string {
	el := dom.FindFirst(root, func(n *html.Node) bool { return dom.Tag(n) == "html" })
	if el == nil {
		return ""
	}
	lang := strings.TrimSpace(dom.Attr(el, "lang"))
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

// collectLinks remembers fragment link targets and element ids.
func (p *Processor) collectLinks(root *html.Node) {
	p.ids = p.ids[:0]
	dom.Walk(root, func(n *html.Node) bool {
		if !dom.IsElement(n) {
			return true
		}
		if id := dom.ID(n); id != "" {
			p.ids = append(p.ids, id)
		}
		if dom.Tag(n) == "a" {
			if id, ok := strings.CutPrefix(strings.TrimSpace(dom.Attr(n, "href")), "#"); ok && id != "" {
				p.ctx.links[id] = true
			}
		}
		return true
	})
}

// loadFonts registers fonts of @font-face rules, first usable source wins.
func (p *Processor) loadFonts() {
	ctx := p.ctx
	for _, face := range ctx.Styles.FontFaces() {
		family := css.Unquote(face.Get("font-family"))
		if family == "" {
			continue
		}
		weight := 400
		switch w := face.Get("font-weight"); w {
		case "", "normal":
		case "bold":
			weight = 700
		default:
			if n, err := strconv.Atoi(w); err == nil {
				weight = n
			}
		}
		style := face.Get("font-style")
		if style == "" {
			style = "normal"
		}
		loaded := false
		for _, src := range css.SplitComma(face.Get("src")) {
			values := css.SplitValues(src)
			if len(values) == 0 {
				continue
			}
			uri, ok := css.URLArgument(values[0])
			if !ok {
				continue
			}
			data := ctx.Resources.RetrieveBytes(uri)
			if data == nil {
				continue
			}
			if err := ctx.Fonts.AddFont(family, data, style, weight); err != nil {
				ctx.log.Warn("Unable to add font", zap.String("family", family), zap.String("src", uri), zap.Error(err))
				continue
			}
			loaded = true
			break
		}
		if !loaded {
			ctx.log.Warn("No usable source for font face", zap.String("family", family))
		}
	}
}

// pageSetup applies @page rules to document pages.
func (p *Processor) pageSetup(doc *layout.Document) {
	var first []*css.PageRule
	for _, rule := range p.ctx.Styles.PageRules() {
		switch rule.Selector {
		case "":
			p.applyPage(&doc.Page, rule.Declarations)
		case ":first":
			first = append(first, rule)
		}
	}
	if len(first) == 0 {
		return
	}
	page := doc.Page
	for _, rule := range first {
		p.applyPage(&page, rule.Declarations)
	}
	if page != doc.Page {
		doc.FirstPage = &page
	}
}

var pageSizes = map[string][2]float64{
	"a3":     {841.89, 1190.55},
	"a4":     {layout.A4Width, layout.A4Height},
	"a5":     {419.53, 595.28},
	"b4":     {708.66, 1000.63},
	"b5":     {498.9, 708.66},
	"letter": {612, 792},
	"legal":  {612, 1008},
	"ledger": {792, 1224},
}

func (p *Processor) applyPage(page *layout.PageSetup, decls []css.Declaration) {
	log := p.ctx.log
	for _, d := range decls {
		if d.Property == "size" {
			p.applyPageSize(page, d.Expression)
			continue
		}
		for _, e := range css.ExpandShorthand(d) {
			side := -1
			switch e.Property {
			case "margin-top":
				side = 0
			case "margin-right":
				side = 1
			case "margin-bottom":
				side = 2
			case "margin-left":
				side = 3
			}
			if side < 0 {
				continue
			}
			if v, ok := css.ParseAbsoluteLength(e.Expression, log); ok {
				page.Margins[side] = v
			}
		}
	}
}

func (p *Processor) applyPageSize(page *layout.PageSetup, value string) {
	var (
		lengths   []float64
		landscape bool
		portrait  bool
	)
	for _, v := range css.SplitValues(value) {
		switch v {
		case "landscape":
			landscape = true
			continue
		case "portrait":
			portrait = true
			continue
		case "auto":
			continue
		}
		if size, ok := pageSizes[v]; ok {
			page.Width, page.Height = size[0], size[1]
			continue
		}
		if l, ok := css.ParseAbsoluteLength(v, p.ctx.log); ok {
			lengths = append(lengths, l)
		}
	}
	switch len(lengths) {
	case 1:
		page.Width, page.Height = lengths[0], lengths[0]
	case 2:
		page.Width, page.Height = lengths[0], lengths[1]
	}
	if landscape && page.Width < page.Height || portrait && page.Width > page.Height {
		page.Width, page.Height = page.Height, page.Width
	}
}

// visit processes node and its subtree.
func (p *Processor) visit(n *html.Node) {
	ctx := p.ctx
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.visit(c)
		}
		return
	case html.TextNode:
		p.content(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	workers := ctx.props.Workers
	styles := ctx.Styles.Styles(n)
	kind := workers.Kind(n, styles)
	if styles.Get("display") == "none" && !kind.metadata() {
		return
	}
	styles = ctx.Styles.Resolve(n, ctx.Counters)

	w, kind := workers.Create(n, styles, ctx)
	if w != nil {
		ctx.state.Push(w)
	}
	ctx.Counters.PushAll()
	p.pseudo(n, "before")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.visit(c)
	}
	p.pseudo(n, "after")
	ctx.Counters.PopAll()
	if w == nil {
		return
	}

	w.ProcessEnd(ctx)
	ctx.state.Pop()
	if a := ctx.props.Appliers.Get(kind); a != nil {
		a.Apply(ctx, w, styles)
	}
	p.destination(n, w)
	p.attach(w)
}

// content passes text to the innermost worker.
func (p *Processor) content(text string) {
	top := p.ctx.state.Top()
	if top == nil {
		if strings.TrimSpace(text) != "" {
			p.roots = append(p.roots, textLeaves(text, nil, nil)...)
		}
		return
	}
	if !top.ProcessContent(text, p.ctx) {
		p.ctx.log.Debug("Text ignored", zap.String("text", strings.TrimSpace(text)))
	}
}

// pseudo generates ::before or ::after content of element.
func (p *Processor) pseudo(el *html.Node, which string) {
	ctx := p.ctx
	styles, ok := ctx.Styles.ResolvePseudo(el, which, ctx.Counters)
	if !ok || styles.Get("display") == "none" {
		return
	}
	leaves := ctx.generateContent(el, styles.Get("content"), styles)
	if len(leaves) == 0 {
		return
	}
	w := &pseudoWorker{leaves: leaves}
	switch styles.Get("display") {
	case "block", "list-item", "flow-root":
		para := layout.New(layout.KindParagraph, "")
		for _, l := range leaves {
			para.Add(l)
		}
		applyBlockNode(ctx, para, styles)
		w.leaves = []*layout.Node{para}
	default:
		applyInline(ctx, w, styles)
	}
	p.attach(w)
}

// destination marks first result of element with id when something links to
// it or it becomes outline entry.
func (p *Processor) destination(el *html.Node, w Worker) {
	ctx := p.ctx
	res := results(w)
	if len(res) == 0 {
		return
	}
	if id := dom.ID(el); id != "" && ctx.IsLinkTarget(id) && !res[0].Has(layout.PropDestination) {
		res[0].Set(layout.PropDestination, id)
	}
	if level, ok := ctx.Outline.Level(dom.Tag(el)); ok {
		if id := dom.ID(el); id != "" && !res[0].Has(layout.PropDestination) {
			res[0].Set(layout.PropDestination, id)
		}
		ctx.Outline.Add(level, res[0])
	}
}

// attach passes finished worker to the innermost worker accepting it. When
// no open worker accepts it, its results become top level elements.
func (p *Processor) attach(w Worker) {
	ctx := p.ctx
	for i := range ctx.state.Size() {
		parent := ctx.state.at(i)
		if parent.ProcessTagChild(w, ctx) {
			if i > 0 {
				ctx.log.Warn("Element attached to distant ancestor", zap.Int("levels", i+1))
			}
			return
		}
	}
	res := results(w)
	if len(res) > 0 && !ctx.state.Empty() {
		ctx.log.Warn("No ancestor accepts element, promoting it to top level", zap.Int("elements", len(res)))
	}
	p.roots = append(p.roots, res...)
}
