// Package pdf implements the PageEditor driven port on top of pdfcpu.
// All pdfcpu specifics stay behind this adapter so the application layer
// depends only on the port.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/validate"
	"github.com/pkg/errors"

	"credstamp/internal/domain/model"
	"credstamp/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PageEditor = (*Editor)(nil)

// Editor edits single pages of a template PDF. Every call parses the
// template bytes fresh, so the input buffer is never mutated and calls are
// independent of each other.
type Editor struct{}

// NewEditor creates an Editor.
func NewEditor() *Editor {
	return &Editor{}
}

// PageCount returns the number of pages in the template.
func (e *Editor) PageCount(_ context.Context, template []byte) (int, error) {
	c, err := e.read(template)
	if err != nil {
		return 0, err
	}
	return c.PageCount, nil
}

// ReplaceText substitutes the original login/password strings inside the
// target page's existing text runs, preserving font, size, and position.
// Longer originals are replaced first so an original that is a prefix of
// another cannot clobber it. Returns driven.ErrFieldNotFound when any
// original does not occur on the page.
func (e *Editor) ReplaceText(_ context.Context, template []byte, pageIndex int, repls []model.TextReplacement) ([]byte, error) {
	c, err := e.read(template)
	if err != nil {
		return nil, err
	}

	pageDict, err := e.pageDict(c, pageIndex)
	if err != nil {
		return nil, err
	}

	data, carrier, err := e.pageContent(c, pageDict)
	if err != nil {
		return nil, err
	}

	ordered := make([]model.TextReplacement, len(repls))
	copy(ordered, repls)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Old) > len(ordered[j].Old)
	})

	for _, repl := range ordered {
		old := escapeString(repl.Old)
		if !bytes.Contains(data, old) {
			return nil, errors.Wrapf(driven.ErrFieldNotFound, "text %q on page %d", repl.Old, pageIndex)
		}
		data = bytes.ReplaceAll(data, old, escapeString(repl.New))
	}

	if err := e.setPageContent(c, pageDict, carrier, data); err != nil {
		return nil, err
	}
	return writeContext(c)
}

// OverlayText draws, for each field, a filled rectangle in the background
// color over the field's clear-rect and then the new text at the field's
// origin. Existing content is left in place underneath; no search of it is
// performed.
func (e *Editor) OverlayText(_ context.Context, template []byte, pageIndex int, fields []model.OverlayField, background model.Color) ([]byte, error) {
	c, err := e.read(template)
	if err != nil {
		return nil, err
	}

	pageDict, err := e.pageDict(c, pageIndex)
	if err != nil {
		return nil, err
	}

	fontRes := make(map[string]string, len(fields))
	for _, f := range fields {
		base := f.Spec.Font
		if base == "" {
			base = "Helvetica"
		}
		if _, ok := fontRes[base]; ok {
			continue
		}
		resName, err := ensureFont(c, pageDict, base)
		if err != nil {
			return nil, err
		}
		fontRes[base] = resName
	}

	data, carrier, err := e.pageContent(c, pageDict)
	if err != nil {
		return nil, err
	}

	// Bracket the original content in q/Q so its graphics state cannot leak
	// into the overlay ops, then append the overlay.
	var buf bytes.Buffer
	buf.WriteString("q\n")
	buf.Write(data)
	buf.WriteString("\nQ\n")
	writeOverlayOps(&buf, fields, fontRes, background)

	if err := e.setPageContent(c, pageDict, carrier, buf.Bytes()); err != nil {
		return nil, err
	}
	return writeContext(c)
}

// read parses template bytes into a pdfcpu context with relaxed validation.
func (e *Editor) read(template []byte) (*pdfmodel.Context, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	c, err := pdfcpu.Read(bytes.NewReader(template), conf)
	if err != nil {
		return nil, errors.Wrap(err, "parse template PDF")
	}
	if err := validate.XRefTable(c.XRefTable); err != nil {
		return nil, errors.Wrap(err, "validate template PDF")
	}
	return c, nil
}

// pageDict resolves the 0-based page index to its page dictionary.
func (e *Editor) pageDict(c *pdfmodel.Context, pageIndex int) (types.Dict, error) {
	if pageIndex < 0 || pageIndex >= c.PageCount {
		return nil, errors.Wrapf(driven.ErrInvalidPage, "page %d of a %d-page document", pageIndex, c.PageCount)
	}

	d, _, _, err := c.PageDict(pageIndex+1, false)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve page %d", pageIndex)
	}
	if d == nil {
		return nil, errors.Errorf("page %d has no dictionary", pageIndex)
	}
	return d, nil
}

// pageContent returns the decoded content of the page, joining a Contents
// array into one buffer, plus the stream dict reused as the carrier when the
// rewritten content is installed.
func (e *Editor) pageContent(c *pdfmodel.Context, pageDict types.Dict) ([]byte, *types.StreamDict, error) {
	obj, found := pageDict.Find("Contents")
	if !found {
		return nil, nil, errors.New("page has no content stream")
	}

	deref, err := c.Dereference(obj)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dereference page contents")
	}

	var streams []*types.StreamDict
	if arr, ok := deref.(types.Array); ok {
		for i, entry := range arr {
			sd, _, err := c.DereferenceStreamDict(entry)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "dereference content stream %d", i)
			}
			streams = append(streams, sd)
		}
	} else {
		sd, _, err := c.DereferenceStreamDict(obj)
		if err != nil {
			return nil, nil, errors.Wrap(err, "dereference content stream")
		}
		streams = append(streams, sd)
	}
	if len(streams) == 0 {
		return nil, nil, errors.New("page has an empty contents array")
	}

	parts := make([][]byte, 0, len(streams))
	for i, sd := range streams {
		if err := sd.Decode(); err != nil {
			return nil, nil, errors.Wrapf(err, "decode content stream %d", i)
		}
		parts = append(parts, sd.Content)
	}

	return bytes.Join(parts, []byte("\n")), streams[0], nil
}

// setPageContent re-encodes data into the carrier stream dict, registers it
// as a new object, and points the page's Contents at it.
func (e *Editor) setPageContent(c *pdfmodel.Context, pageDict types.Dict, carrier *types.StreamDict, data []byte) error {
	carrier.Content = data
	if err := carrier.Encode(); err != nil {
		return errors.Wrap(err, "encode content stream")
	}

	ref, err := c.IndRefForNewObject(*carrier)
	if err != nil {
		return errors.Wrap(err, "allocate content stream object")
	}

	pageDict.Update("Contents", *ref)
	return nil
}

// ensureFont registers a simple WinAnsi Type1 font resource for base on the
// page when one is not present yet and returns the resource name. The name
// is derived from the base font, so repeated generation against an already
// stamped page reuses the existing resource.
func ensureFont(c *pdfmodel.Context, pageDict types.Dict, base string) (string, error) {
	resources, err := ensureDict(c, pageDict, "Resources")
	if err != nil {
		return "", err
	}
	fonts, err := ensureDict(c, resources, "Font")
	if err != nil {
		return "", err
	}

	resName := "CSF-" + base
	if _, found := fonts.Find(resName); found {
		return resName, nil
	}

	fontDict := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(base),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	ref, err := c.IndRefForNewObject(fontDict)
	if err != nil {
		return "", errors.Wrapf(err, "register font %q", base)
	}
	fonts[resName] = *ref

	return resName, nil
}

// ensureDict returns the dict stored under key in parent, creating and
// installing an empty one when absent.
func ensureDict(c *pdfmodel.Context, parent types.Dict, key string) (types.Dict, error) {
	obj, found := parent.Find(key)
	if !found {
		d := types.Dict{}
		parent[key] = d
		return d, nil
	}

	d, err := c.DereferenceDict(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "dereference %s dict", key)
	}
	if d == nil {
		d = types.Dict{}
		parent[key] = d
	}
	return d, nil
}

// writeOverlayOps appends the clear rectangles and text-show operators for
// all fields.
func writeOverlayOps(buf *bytes.Buffer, fields []model.OverlayField, fontRes map[string]string, bg model.Color) {
	rects := 0
	for _, f := range fields {
		if !f.Spec.ClearRect.IsZero() {
			rects++
		}
	}

	if rects > 0 {
		fmt.Fprintf(buf, "q\n%.4f %.4f %.4f rg\n", bg.R, bg.G, bg.B)
		for _, f := range fields {
			r := f.Spec.ClearRect
			if r.IsZero() {
				continue
			}
			fmt.Fprintf(buf, "%.2f %.2f %.2f %.2f re\n", r.X0, r.Y0, r.Width(), r.Height())
		}
		buf.WriteString("f\nQ\n")
	}

	for _, f := range fields {
		base := f.Spec.Font
		if base == "" {
			base = "Helvetica"
		}
		fmt.Fprintf(buf, "BT\n/%s %.2f Tf\n0 0 0 rg\n%.2f %.2f Td\n(", fontRes[base], f.Spec.Size, f.Spec.X, f.Spec.Y)
		buf.Write(escapeString(f.Text))
		buf.WriteString(") Tj\nET\n")
	}
}

// escapeString converts text to the byte form it takes inside a PDF literal
// string: Latin-1 code points (the WinAnsi range; anything beyond becomes
// '?') with backslash, '(' and ')' escaped.
func escapeString(s string) []byte {
	out := make([]byte, 0, len(s)+4)
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		b := byte(r)
		switch b {
		case '\\', '(', ')':
			out = append(out, '\\', b)
		default:
			out = append(out, b)
		}
	}
	return out
}

// writeContext serializes the context to a fresh buffer.
func writeContext(c *pdfmodel.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(c, &buf); err != nil {
		return nil, errors.Wrap(err, "serialize PDF")
	}
	return buf.Bytes(), nil
}
