// Package convert is the entry point of conversion: it turns HTML documents
// into layout trees and drives batch conversion for the command line.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/ianaindex"

	"h2p/attach"
	"h2p/common"
	"h2p/config"
	"h2p/css/media"
	"h2p/dom"
	"h2p/layout"
	"h2p/resource"
)

// ToElements parses HTML read from r and converts it to top level layout
// elements.
func ToElements(ctx context.Context, r io.Reader, props attach.Properties, log *zap.Logger) ([]*layout.Node, error) {
	p, root, err := prepare(ctx, r, props, log)
	if err != nil {
		return nil, err
	}
	return p.ProcessElements(root)
}

// ToDocument parses HTML read from r and converts it to layout document.
func ToDocument(ctx context.Context, r io.Reader, props attach.Properties, log *zap.Logger) (*layout.Document, error) {
	p, root, err := prepare(ctx, r, props, log)
	if err != nil {
		return nil, err
	}
	return p.ProcessDocument(root)
}

func prepare(ctx context.Context, r io.Reader, props attach.Properties, log *zap.Logger) (*attach.Processor, *html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	root, err := dom.ParseWithEncoding(r, props.Charset)
	if err != nil {
		return nil, nil, err
	}
	pc, err := attach.NewProcessorContext(ctx, props, log)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to prepare conversion: %w", err)
	}
	return attach.NewProcessor(pc), root, nil
}

// Export writes layout document to w in requested format.
func Export(doc *layout.Document, w io.Writer, format common.OutputFmt) error {
	switch format {
	case common.OutputFmtTree:
		return doc.WriteTree(w)
	case common.OutputFmtXml:
		return doc.WriteXML(w)
	case common.OutputFmtIon:
		return doc.WriteIon(w, false)
	case common.OutputFmtIonBinary:
		return doc.WriteIon(w, true)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// NewProperties builds conversion properties from document configuration.
// Font directories which cannot be scanned are reported and skipped.
func NewProperties(cfg *config.DocumentConfig, log *zap.Logger) (attach.Properties, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dev := media.DeviceDescription{
		Type:        cfg.Media.Type.String(),
		Width:       cfg.Media.Width,
		Height:      cfg.Media.Height,
		Resolution:  cfg.Media.Resolution,
		Color:       cfg.Media.Color,
		ColorIndex:  cfg.Media.ColorIndex,
		Monochrome:  cfg.Media.Monochrome,
		Orientation: cfg.Media.Orientation,
		Scan:        cfg.Media.Scan,
		Grid:        cfg.Media.Grid,
	}

	props := attach.Properties{
		BaseURI: cfg.BaseURI,
		Device:  &dev,
		Retriever: resource.NewDefaultRetriever(resource.RetrieverOptions{
			AllowRemote: cfg.Resources.AllowRemote,
			Timeout:     cfg.Resources.Timeout,
			MaxSize:     cfg.Resources.MaxSize,
			UserAgent:   cfg.Resources.UserAgent,
			AuthToken:   cfg.Resources.AuthToken.Plain(),
		}, log),
		CreateAcroForm:      cfg.CreateAcroForm,
		ImmediateFlush:      cfg.ImmediateFlush,
		ContinuousContainer: cfg.ContinuousContainer,
		LimitOfLayouts:      cfg.LimitOfLayouts,
	}

	if cfg.Outline.Enable {
		levels := cfg.Outline.Levels
		if len(levels) == 0 {
			levels = attach.DefaultOutlineLevels()
		}
		props.Outline = attach.NewOutlineHandler(levels)
	}

	props.Fonts = resource.NewFontProvider(cfg.Fonts.Default, log)
	for _, dir := range cfg.Fonts.Directories {
		n, err := props.Fonts.AddDirectory(dir)
		if err != nil {
			log.Warn("Unable to load fonts", zap.String("dir", dir), zap.Error(err))
			continue
		}
		log.Debug("Fonts loaded", zap.String("dir", dir), zap.Int("count", n))
	}

	if cfg.StylesheetPath != "" {
		data, err := os.ReadFile(cfg.StylesheetPath)
		if err != nil {
			return props, fmt.Errorf("unable to read user stylesheet from %q: %w", cfg.StylesheetPath, err)
		}
		props.UserCSS = data
	}

	if cfg.Charset != "" {
		enc, err := ianaindex.IANA.Encoding(cfg.Charset)
		if err != nil || enc == nil {
			return props, fmt.Errorf("unknown input character set %q", cfg.Charset)
		}
		props.Charset = enc
	}
	return props, nil
}
