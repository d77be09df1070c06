// Package media parses and evaluates CSS media queries.
package media

// Media types.
const (
	TypeAll        = "all"
	TypePrint      = "print"
	TypeScreen     = "screen"
	TypeSpeech     = "speech"
	TypeAural      = "aural"
	TypeBraille    = "braille"
	TypeEmbossed   = "embossed"
	TypeHandheld   = "handheld"
	TypeProjection = "projection"
	TypeTTY        = "tty"
	TypeTV         = "tv"
)

// Orientation and scan values.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
	ScanProgressive      = "progressive"
	ScanInterlace        = "interlace"
)

var knownTypes = map[string]bool{
	TypeAll: true, TypePrint: true, TypeScreen: true, TypeSpeech: true, TypeAural: true, TypeBraille: true,
	TypeEmbossed: true, TypeHandheld: true, TypeProjection: true, TypeTTY: true, TypeTV: true,
}

// IsKnownType reports whether name is one of CSS 2.1 media types.
func IsKnownType(name string) bool {
	return knownTypes[name]
}

// DeviceDescription is the target device queries are evaluated against.
// Width and Height are in CSS pixels, Resolution is in dots per inch, Color is
// number of bits per color component.
type DeviceDescription struct {
	Type        string
	Width       float64
	Height      float64
	Resolution  float64
	Color       int
	ColorIndex  int
	Monochrome  int
	Orientation string
	Scan        string
	Grid        bool
}

// Default returns description matching any media type with A4 page.
func Default() DeviceDescription {
	return DeviceDescription{
		Type:        TypeAll,
		Width:       793.7,
		Height:      1122.5,
		Resolution:  300,
		Color:       8,
		Orientation: OrientationPortrait,
	}
}

// Print returns default description with print media type.
func Print() DeviceDescription {
	d := Default()
	d.Type = TypePrint
	return d
}

// WithSize returns copy of description with new dimensions, orientation
// follows.
func (d DeviceDescription) WithSize(width, height float64) DeviceDescription {
	d.Width, d.Height = width, height
	if width > height {
		d.Orientation = OrientationLandscape
	} else {
		d.Orientation = OrientationPortrait
	}
	return d
}
