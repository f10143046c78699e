// Package clean produces the "stripped" rendition of downloaded manuals:
// the manualslib.com watermark and its link annotations are removed and the
// result is optimized.
package clean

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"salli-go/internal/salli"
)

// watermarkBlock matches the saved graphics state holding the
// "Downloaded from www.Manualslib.com manuals search engine" footer.
var watermarkBlock = regexp.MustCompile(`(?s)q\s*\n0 0 \d+ \d+ re.*?manuals search engine.*?Q\s*\n?`)

const watermarkHost = "manualslib.com"

// Stripped counts what StripWatermark removed.
type Stripped struct {
	Links  int
	Blocks int
}

// PDFCleaner strips the watermark and rewrites the PDF with pdfcpu's
// optimizer, which also drops unused objects and duplicate resources.
type PDFCleaner struct{}

// NewPDFCleaner disables pdfcpu's per-user config directory so cleaning
// never writes outside the paths it is given.
func NewPDFCleaner() *PDFCleaner {
	api.DisableConfigDir()
	return &PDFCleaner{}
}

func (c *PDFCleaner) Clean(inPath, outPath string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.Cmd = model.OPTIMIZE

	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}
	if _, err := StripWatermark(ctx); err != nil {
		return fmt.Errorf("stripping %s: %w", inPath, err)
	}
	if err := api.WriteContextFile(ctx, outPath); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

// StripWatermark removes manualslib.com link annotations and watermark
// blocks from every page of ctx.
func StripWatermark(ctx *model.Context) (Stripped, error) {
	var s Stripped
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		page, _, _, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return s, fmt.Errorf("page %d: %w", pageNr, err)
		}

		links, err := stripLinks(ctx, page)
		if err != nil {
			return s, fmt.Errorf("page %d annotations: %w", pageNr, err)
		}
		blocks, err := stripContent(ctx, page, pageNr)
		if err != nil {
			return s, fmt.Errorf("page %d content: %w", pageNr, err)
		}
		s.Links += links
		s.Blocks += blocks
	}
	return s, nil
}

func stripLinks(ctx *model.Context, page types.Dict) (int, error) {
	o, found := page.Find("Annots")
	if !found {
		return 0, nil
	}
	annots, err := ctx.DereferenceArray(o)
	if err != nil {
		return 0, err
	}

	kept := types.Array{}
	for _, a := range annots {
		drop, err := isWatermarkLink(ctx, a)
		if err != nil {
			return 0, err
		}
		if !drop {
			kept = append(kept, a)
		}
	}

	removed := len(annots) - len(kept)
	switch {
	case removed == 0:
	case len(kept) == 0:
		page.Delete("Annots")
	default:
		page.Update("Annots", kept)
	}
	return removed, nil
}

func isWatermarkLink(ctx *model.Context, o types.Object) (bool, error) {
	annot, err := ctx.DereferenceDict(o)
	if err != nil || annot == nil {
		return false, err
	}
	a, found := annot.Find("A")
	if !found {
		return false, nil
	}
	action, err := ctx.DereferenceDict(a)
	if err != nil || action == nil {
		return false, err
	}
	u, found := action.Find("URI")
	if !found {
		return false, nil
	}
	if u, err = ctx.Dereference(u); err != nil {
		return false, err
	}

	var uri string
	switch v := u.(type) {
	case types.StringLiteral:
		uri, err = types.StringLiteralToString(v)
	case types.HexLiteral:
		uri, err = types.HexLiteralToString(v)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(uri), watermarkHost), nil
}

// stripContent replaces the page's content with a single stream that lacks
// the watermark blocks. Pages without a watermark are left untouched.
func stripContent(ctx *model.Context, page types.Dict, pageNr int) (int, error) {
	bb, err := ctx.PageContent(page, pageNr)
	if errors.Is(err, model.ErrNoContent) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n := len(watermarkBlock.FindAllIndex(bb, -1))
	if n == 0 {
		return 0, nil
	}

	sd, _ := ctx.NewStreamDictForBuf(watermarkBlock.ReplaceAll(bb, nil))
	if err := sd.Encode(); err != nil {
		return 0, err
	}
	ir, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return 0, err
	}
	page.Update("Contents", *ir)
	return n, nil
}

var _ salli.Cleaner = (*PDFCleaner)(nil)
