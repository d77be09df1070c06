// Package common keeps enums shared between configuration, command line and
// conversion code.
package common

// Specification of requested output type.
// ENUM(tree, xml, ion, ion-binary)
type OutputFmt int

// Ext returns file extension for the output format.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtTree:
		return ".txt"
	case OutputFmtXml:
		return ".xml"
	case OutputFmtIon:
		return ".ion"
	case OutputFmtIonBinary:
		return ".10n"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Media type of the target device.
// ENUM(all, print, screen, speech, aural, braille, embossed, handheld, projection, tty, tv)
type MediaType int
