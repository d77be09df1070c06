package convert

import (
	"archive/zip"
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// srcEncoding is encoding announced by byte order mark.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// sniffLen is how much of the file is looked at to recognize it.
const sniffLen = 1024

var htmlExtensions = map[string]bool{
	".html":  true,
	".htm":   true,
	".xhtml": true,
	".xht":   true,
	".shtml": true,
}

// detectEncoding looks for byte order mark. UTF-32 marks must be checked
// before UTF-16 ones since UTF-32LE mark starts with UTF-16LE one.
func detectEncoding(head []byte) srcEncoding {
	switch {
	case bytes.HasPrefix(head, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return encUTF32BigEndian
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return encUTF32LittleEndian
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return encUTF8
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return encUTF16BigEndian
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return encUTF16LittleEndian
	}
	return encUnknown
}

func (e srcEncoding) decoder() *encoding.Decoder {
	switch e {
	case encUTF8:
		return unicode.UTF8BOM.NewDecoder()
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder()
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder()
	}
	return nil
}

// selectReader returns reader producing UTF-8 for documents with byte order
// mark, other documents are returned as is for charset detection.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	if dec := enc.decoder(); dec != nil {
		return dec.Reader(r)
	}
	return r
}

// looksLikeHTML checks beginning of the document (already converted to
// UTF-8) for markup. Fragments are accepted as well as complete documents.
func looksLikeHTML(head []byte) bool {
	text := strings.TrimLeft(string(head), " \t\r\n\f")
	if len(text) < 2 || text[0] != '<' {
		return false
	}
	switch c := text[1]; {
	case c == '!', c == '?':
		return true
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	}
	return false
}

// sniff recognizes HTML document by its name and content.
func sniff(name string, r io.Reader) (bool, srcEncoding, error) {
	if !htmlExtensions[strings.ToLower(filepath.Ext(name))] {
		return false, encUnknown, nil
	}
	head, err := bufio.NewReaderSize(r, sniffLen).Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return false, encUnknown, err
	}
	enc := detectEncoding(head)
	switch enc {
	case encUnknown:
	case encUTF8:
		head = head[3:]
	default:
		if converted, err := enc.decoder().Bytes(head[:len(head)&^3]); err == nil {
			head = converted
		}
	}
	return looksLikeHTML(head), enc, nil
}

// isHTMLFile reports whether file is HTML document and its byte order mark
// encoding.
func isHTMLFile(path string) (bool, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()
	return sniff(path, f)
}

// isHTMLInArchive is isHTMLFile for archive entries.
func isHTMLInArchive(f *zip.File) (bool, srcEncoding, error) {
	if !htmlExtensions[strings.ToLower(filepath.Ext(f.Name))] {
		return false, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()
	return sniff(f.Name, r)
}

// isArchiveFile reports whether file is zip archive, both extension and
// content must agree.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}
