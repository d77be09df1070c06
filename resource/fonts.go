package resource

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// Standard PDF font families available without embedding.
const (
	FontTimes        = "Times-Roman"
	FontHelvetica    = "Helvetica"
	FontCourier      = "Courier"
	FontSymbol       = "Symbol"
	FontZapfDingbats = "ZapfDingbats"
)

var standardFamilies = map[string]string{
	"serif":           FontTimes,
	"times":           FontTimes,
	"times new roman": FontTimes,
	"times-roman":     FontTimes,
	"sans-serif":      FontHelvetica,
	"helvetica":       FontHelvetica,
	"arial":           FontHelvetica,
	"system-ui":       FontHelvetica,
	"cursive":         FontHelvetica,
	"fantasy":         FontHelvetica,
	"monospace":       FontCourier,
	"courier":         FontCourier,
	"courier new":     FontCourier,
	"symbol":          FontSymbol,
	"zapfdingbats":    FontZapfDingbats,
}

// FontFace is font program registered with provider.
type FontFace struct {
	Family string
	Style  string
	Weight int
	MIME   string
	Source string
	Data   []byte
}

// FontProvider keeps fonts available for conversion: installed from
// directories, embedded with @font-face or standard PDF ones.
type FontProvider struct {
	faces    map[string][]*FontFace
	fallback string
	log      *zap.Logger
}

// NewFontProvider creates provider. Fallback is family returned when nothing
// else matches, empty means Times-Roman.
func NewFontProvider(fallback string, log *zap.Logger) *FontProvider {
	if log == nil {
		log = zap.NewNop()
	}
	if fallback == "" {
		fallback = FontTimes
	}
	return &FontProvider{
		faces:    make(map[string][]*FontFace),
		fallback: fallback,
		log:      log.Named("fonts"),
	}
}

func familyKey(family string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(family), `"'`)))
}

// AddFont registers font program. Data must be TrueType, OpenType or WOFF.
func (p *FontProvider) AddFont(family string, data []byte, style string, weight int) error {
	return p.add(&FontFace{Family: family, Style: style, Weight: weight, Data: data})
}

func (p *FontProvider) add(f *FontFace) error {
	if !filetype.IsFont(f.Data) {
		return fmt.Errorf("font '%s' is not a supported font program", f.Family)
	}
	kind, _ := filetype.Match(f.Data)
	if f.Style == "" {
		f.Style = "normal"
	}
	if f.Weight == 0 {
		f.Weight = 400
	}
	f.MIME = kind.MIME.Value
	key := familyKey(f.Family)
	p.faces[key] = append(p.faces[key], f)
	p.log.Debug("Font registered", zap.String("family", f.Family), zap.String("style", f.Style), zap.Int("weight", f.Weight), zap.String("mime", f.MIME))
	return nil
}

var weightSuffixes = map[string]int{
	"thin": 100, "extralight": 200, "light": 300, "regular": 400, "book": 400, "medium": 500,
	"semibold": 600, "demibold": 600, "bold": 700, "extrabold": 800, "black": 900, "heavy": 900,
}

// faceFromFileName derives family, style and weight from names like
// "OpenSans-BoldItalic.ttf".
func faceFromFileName(path string) (string, string, int) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	family, variant, found := strings.Cut(name, "-")
	if !found {
		return name, "normal", 400
	}
	variant = strings.ToLower(variant)
	style := "normal"
	if v, ok := strings.CutSuffix(variant, "italic"); ok {
		style, variant = "italic", v
	} else if v, ok := strings.CutSuffix(variant, "oblique"); ok {
		style, variant = "oblique", v
	}
	weight := 400
	if w, ok := weightSuffixes[variant]; ok {
		weight = w
	}
	return family, style, weight
}

// AddDirectory registers every font found under dir, returns number of fonts
// added. Unreadable files are skipped.
func (p *FontProvider) AddDirectory(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf", ".woff", ".woff2", ".ttc":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			p.log.Warn("Unable to read font", zap.String("path", path), zap.Error(err))
			return nil
		}
		family, style, weight := faceFromFileName(path)
		if err := p.add(&FontFace{Family: family, Style: style, Weight: weight, Source: path, Data: data}); err != nil {
			p.log.Warn("Skipping font", zap.String("path", path), zap.Error(err))
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("unable to scan font directory '%s': %w", dir, err)
	}
	return count, nil
}

// Resolve picks family for CSS font-family list: first registered family,
// then first standard one, then fallback.
func (p *FontProvider) Resolve(families []string) string {
	for _, f := range families {
		if faces := p.faces[familyKey(f)]; len(faces) > 0 {
			return faces[0].Family
		}
	}
	for _, f := range families {
		if std, ok := standardFamilies[familyKey(f)]; ok {
			return std
		}
	}
	return p.fallback
}

// Lookup returns registered face of family closest to requested style and
// weight, nil for standard or unknown families.
func (p *FontProvider) Lookup(family, style string, weight int) *FontFace {
	faces := p.faces[familyKey(family)]
	if len(faces) == 0 {
		return nil
	}
	return slices.MinFunc(faces, func(a, b *FontFace) int {
		return faceDistance(a, style, weight) - faceDistance(b, style, weight)
	})
}

func faceDistance(f *FontFace, style string, weight int) int {
	d := f.Weight - weight
	if d < 0 {
		d = -d
	}
	if f.Style != style {
		d += 1000
	}
	return d
}

// Families returns sorted registered family names.
func (p *FontProvider) Families() []string {
	out := make([]string, 0, len(p.faces))
	for _, faces := range p.faces {
		out = append(out, faces[0].Family)
	}
	slices.Sort(out)
	return out
}
