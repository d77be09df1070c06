package layout

// A4 page in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// PageSetup describes page box in points. Margins are top, right, bottom,
// left.
type PageSetup struct {
	Width   float64
	Height  float64
	Margins [4]float64
}

// DefaultPage is A4 with half inch margins.
func DefaultPage() PageSetup {
	return PageSetup{Width: A4Width, Height: A4Height, Margins: [4]float64{36, 36, 36, 36}}
}

// OutlineEntry is bookmark pointing to element destination.
type OutlineEntry struct {
	Title       string
	Destination string
	Level       int
	Children    []*OutlineEntry
}

// Document is root of layout tree together with document level settings.
type Document struct {
	ID                  string
	Title               string
	Lang                string
	Meta                map[string]string
	Page                PageSetup
	FirstPage           *PageSetup // nil when first page is not different
	ImmediateFlush      bool
	AcroForm            bool
	ContinuousContainer bool // single page growing with content
	Outline             []*OutlineEntry
	Root                *Node
}

// NewDocument creates empty document.
func NewDocument(id string) *Document {
	return &Document{
		ID:   id,
		Meta: make(map[string]string),
		Page: DefaultPage(),
		Root: New(KindDocument, ""),
	}
}

// Add appends top level element.
func (d *Document) Add(n *Node) bool {
	return d.Root.Add(n)
}

// AddOutline places new entry into outline tree: it becomes child of the
// last entry with smaller level.
func (d *Document) AddOutline(level int, title, destination string) *OutlineEntry {
	e := &OutlineEntry{Title: title, Destination: destination, Level: level}
	list := &d.Outline
	for {
		if len(*list) == 0 {
			break
		}
		last := (*list)[len(*list)-1]
		if last.Level >= level {
			break
		}
		list = &last.Children
	}
	*list = append(*list, e)
	return e
}
