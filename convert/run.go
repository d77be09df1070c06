package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"h2p/archive"
	"h2p/common"
	"h2p/css/resolve"
	"h2p/state"
)

// source describes single document to convert.
type source struct {
	// part of the source path relative to the original one, always
	// including file name
	name string
	// base for relative references, used when configuration has none
	base string
	enc  srcEncoding
	// archive document came from, nil for regular files
	archive *archive.Archive
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format, err = common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to tree", zap.Error(err))
		env.Format = common.OutputFmtTree
	}

	if m := cmd.String("media"); len(m) > 0 {
		mt, err := common.ParseMediaType(m)
		if err != nil {
			return fmt.Errorf("unknown media type %q: %w", m, err)
		}
		env.Cfg.Document.Media.Type = mt
	}
	if b := cmd.String("base-uri"); len(b) > 0 {
		env.Cfg.Document.BaseURI = b
	}

	env.DefaultStyle = resolve.DefaultCSS()
	if env.Cfg.Document.StylesheetPath != "" {
		data, err := os.ReadFile(env.Cfg.Document.StylesheetPath)
		if err != nil {
			return fmt.Errorf("unable to read user stylesheet from %q: %w", env.Cfg.Document.StylesheetPath, err)
		}
		env.UserStyle = data
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	env.CodePage = lookupCharset(cmd.String("force-zip-cp"), "Forcefully converting all non UTF-8 file names in archives", log)

	// Documents without byte order mark and meta charset declaration could
	// be in any code page
	cs := cmd.String("charset")
	if len(cs) == 0 {
		cs = env.Cfg.Document.Charset
	}
	env.InputCharset = lookupCharset(cs, "Forcefully decoding input documents", log)

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

func lookupCharset(name, msg string, log *zap.Logger) encoding.Encoding {
	if len(name) == 0 {
		return nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", name), zap.Error(err))
		return nil
	}
	n, _ := ianaindex.IANA.Name(enc)
	log.Debug(msg, zap.String("charset", n))
	return enc
}

// process handles the core conversion logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if err := processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		doc, enc, err := isHTMLFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if doc && len(tail) == 0 {
			// we have document, it cannot have tail
			return processFile(ctx, head, source{name: filepath.Base(head), base: head, enc: enc}, dst, log)
		}
		return fmt.Errorf("input was not recognized as HTML document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding HTML documents and archives and
// processes them in natural order. Failures of individual documents are
// collected and returned together.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(natural.StringSlice(paths))

	count := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		arc, er := isArchiveFile(path)
		if er != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(er))
			continue
		}
		if arc {
			count++
			if er := processArchive(ctx, path, "", filepath.Dir(rel), dst, log); er != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(er))
				err = multierr.Append(err, er)
			}
			continue
		}

		doc, enc, er := isHTMLFile(path)
		if er != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(er))
			continue
		}
		if !doc {
			log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			continue
		}

		count++
		if er := processFile(ctx, path, source{name: rel, base: path, enc: enc}, dst, log); er != nil {
			err = multierr.Append(err, er)
		}
	}
	if err == nil && count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return err
}

// processFile opens regular file and converts it.
func processFile(ctx context.Context, path string, src source, dst string, log *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		return err
	}
	defer file.Close()

	if err := processDocument(ctx, file, src, dst, log); err != nil {
		log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		return err
	}
	return nil
}

// processArchive walks all files inside archive, finds HTML documents under
// "pathIn" and processes them. Resources referenced by documents are looked
// up in the same archive first.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	var failed error
	err = archive.Walk(path, pathIn, func(a *archive.Archive, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, enc, err := isHTMLInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", a.Path), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !doc {
			log.Debug("Skipping file, not recognized as document", zap.String("archive", a.Path), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", a.Path), zap.String("file", f.FileHeader.Name), zap.Error(err))
			failed = multierr.Append(failed, err)
			return nil
		}
		defer r.Close()

		cp := state.EnvFromContext(ctx).CodePage

		pathInArchive := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		src := source{
			name:    filepath.Join(pathOut, filepath.FromSlash(pathInArchive)),
			base:    archive.BaseFor(a.Path, f.FileHeader.Name),
			enc:     enc,
			archive: a,
		}
		if err := processDocument(ctx, r, src, dst, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", a.Path), zap.String("file", f.FileHeader.Name), zap.Error(err))
			failed = multierr.Append(failed, err)
		}
		return nil
	})
	return multierr.Append(err, failed)
}

// processDocument converts single HTML document and writes result to the
// destination directory "dst" in requested format.
func processDocument(ctx context.Context, r io.Reader, src source, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var docID, outputName string

	log.Info("Conversion starting", zap.String("from", src.name))
	defer func(start time.Time) {
		// NOTE: image decoding and rasterization libraries may panic on
		// broken input, when multiple documents are being processed we do
		// not want to stop.
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("doc_id", docID))
		}
	}(time.Now())

	// stylesheet and charset are already resolved by Run
	cfg := env.Cfg.Document
	cfg.StylesheetPath, cfg.Charset = "", ""

	props, err := NewProperties(&cfg, log)
	if err != nil {
		return err
	}
	if props.BaseURI == "" {
		props.BaseURI = src.base
	}
	props.DefaultCSS = env.DefaultStyle
	props.UserCSS = env.UserStyle
	switch {
	case src.enc != encUnknown:
		// byte order mark wins, reader produces UTF-8
		props.Charset = unicode.UTF8
	case env.InputCharset != nil:
		props.Charset = env.InputCharset
	}
	if src.archive != nil {
		props.Retriever = archive.NewRetriever(src.archive, props.Retriever, env.Cfg.Document.Resources.MaxSize)
	}

	doc, err := ToDocument(ctx, selectReader(r, src.enc), props, log)
	if err != nil {
		return fmt.Errorf("unable to convert html source (%s): %w", src.name, err)
	}
	docID = doc.ID

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(doc, src.name, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	out, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("unable to create output: %w", err)
	}
	if err := Export(doc, out, env.Format); err != nil {
		out.Close()
		return fmt.Errorf("unable to generate output: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("unable to finalize output: %w", err)
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", docID, filepath.Ext(outputName)), outputName)
	}
	return nil
}
