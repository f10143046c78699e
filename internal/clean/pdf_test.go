package clean

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const drawing = "0 0 m 100 100 l S"

const watermark = "q\n0 0 612 20 re W n\nBT /F1 8 Tf 10 6 Td (Downloaded from www.Manualslib.com manuals search engine) Tj ET\nQ\n"

// buildPDF writes objects 1..n with a correct cross-reference table.
// Object 1 must be the catalog.
func buildPDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func stream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

func link(uri string) string {
	return fmt.Sprintf("<< /Type /Annot /Subtype /Link /Rect [0 0 612 20] /Border [0 0 0] /A << /S /URI /URI (%s) >> >>", uri)
}

// minimalPDF is one page with a single line and no watermark.
func minimalPDF() []byte {
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << >> >>",
		stream(drawing),
	})
}

// watermarkedPDF is one page carrying the manualslib footer, a link to
// manualslib.com, and a second link that must survive.
func watermarkedPDF() []byte {
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R" +
			" /Resources << /Font << /F1 5 0 R >> >> /Annots [6 0 R 7 0 R] >>",
		stream(watermark + drawing),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		link("http://www.ManualsLib.com/"),
		link("https://example.com/support"),
	})
}

func writeFixture(t *testing.T, data []byte) (in, out string) {
	t.Helper()
	dir := t.TempDir()
	in = filepath.Join(dir, "in.pdf")
	out = filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(in, data, 0644); err != nil {
		t.Fatal(err)
	}
	return in, out
}

func readContext(t *testing.T, path string) *model.Context {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadAndValidate(f, conf)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return ctx
}

// firstPage returns page 1's content and the URIs of its link annotations.
func firstPage(t *testing.T, ctx *model.Context) (string, []string) {
	t.Helper()
	page, _, _, err := ctx.PageDict(1, false)
	if err != nil {
		t.Fatalf("PageDict() error = %v", err)
	}
	content, err := ctx.PageContent(page, 1)
	if err != nil {
		t.Fatalf("PageContent() error = %v", err)
	}

	var uris []string
	if o, found := page.Find("Annots"); found {
		annots, err := ctx.DereferenceArray(o)
		if err != nil {
			t.Fatalf("annotations: %v", err)
		}
		for _, a := range annots {
			d, _ := ctx.DereferenceDict(a)
			action, _ := ctx.DereferenceDict(d["A"])
			if sl, ok := action["URI"].(types.StringLiteral); ok {
				uri, _ := types.StringLiteralToString(sl)
				uris = append(uris, uri)
			}
		}
	}
	return string(content), uris
}

func TestPDFCleaner_Clean(t *testing.T) {
	in, out := writeFixture(t, minimalPDF())

	c := NewPDFCleaner()
	if err := c.Clean(in, out); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	n, err := api.PageCountFile(out)
	if err != nil {
		t.Fatalf("PageCountFile() error = %v", err)
	}
	if n != 1 {
		t.Errorf("page count = %d, want 1", n)
	}

	content, _ := firstPage(t, readContext(t, out))
	if !strings.Contains(content, "100 100 l") {
		t.Errorf("content = %q, want drawing kept", content)
	}
}

func TestPDFCleaner_Clean_Watermark(t *testing.T) {
	in, out := writeFixture(t, watermarkedPDF())

	before, uris := firstPage(t, readContext(t, in))
	if !strings.Contains(before, "manuals search engine") || len(uris) != 2 {
		t.Fatalf("fixture lacks watermark: content %q, links %v", before, uris)
	}

	c := NewPDFCleaner()
	if err := c.Clean(in, out); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	content, uris := firstPage(t, readContext(t, out))
	if strings.Contains(content, "manuals search engine") {
		t.Errorf("watermark still in content: %q", content)
	}
	if !strings.Contains(content, "100 100 l") {
		t.Errorf("content = %q, want drawing kept", content)
	}
	if len(uris) != 1 || uris[0] != "https://example.com/support" {
		t.Errorf("links = %v, want only https://example.com/support", uris)
	}
}

func TestStripWatermark(t *testing.T) {
	tests := []struct {
		name string
		pdf  []byte
		want Stripped
	}{
		{"watermarked", watermarkedPDF(), Stripped{Links: 1, Blocks: 1}},
		{"clean", minimalPDF(), Stripped{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := writeFixture(t, tt.pdf)
			ctx := readContext(t, in)

			got, err := StripWatermark(ctx)
			if err != nil {
				t.Fatalf("StripWatermark() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("StripWatermark() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWatermarkBlock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"footer removed", watermark + drawing, drawing},
		{"unrelated state kept", "q\n0 0 612 20 re W n\nBT (Owner's guide) Tj ET\nQ\n" + drawing, "q\n0 0 612 20 re W n\nBT (Owner's guide) Tj ET\nQ\n" + drawing},
		{"footer between drawings", drawing + "\n" + watermark + drawing, drawing + "\n" + drawing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := watermarkBlock.ReplaceAllString(tt.content, ""); got != tt.want {
				t.Errorf("ReplaceAllString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFCleaner_Clean_NotAPDF(t *testing.T) {
	in, out := writeFixture(t, []byte("<html>captcha</html>"))

	c := NewPDFCleaner()
	if err := c.Clean(in, out); err == nil {
		t.Error("Clean() expected error for non-PDF input")
	}
}
