package salli

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"salli-go/internal/model"
)

// ImportFormat is the encoding of a listing handed to the Importer.
type ImportFormat string

const (
	// FormatCSV is a comma-separated file whose first row names the columns.
	FormatCSV ImportFormat = "csv"
	// FormatJSONL is one JSON object per line.
	FormatJSONL ImportFormat = "jsonl"
)

// FormatForPath picks the format from a file extension. Anything that is
// not .jsonl, .ndjson or .json is read as CSV.
func FormatForPath(path string) ImportFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL
	default:
		return FormatCSV
	}
}

// listSeparator splits multi-valued CSV cells such as a brand's categories.
const listSeparator = "|"

// Importer loads scraper output into the ledger. Rows already present are
// counted, never overwritten.
type Importer struct {
	ledger Ledger
	logger Logger
}

func NewImporter(ledger Ledger, logger Logger) *Importer {
	return &Importer{ledger: ledger, logger: logger}
}

// Manuals adds every manual in r. Rows without a manual_url are skipped; a
// malformed source tag stops the import with the offending line. The stats
// gathered so far are returned along with any error.
func (im *Importer) Manuals(r io.Reader, format ImportFormat) (*model.ImportStats, error) {
	stats := &model.ImportStats{}
	err := eachRecord(r, format, func(line int, rec record) error {
		stats.Rows++
		m, err := manualFromRecord(rec)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if m.ManualURL == "" {
			stats.Skipped++
			im.logger.Warn("skipping manual without url", "line", line, "brand", m.Brand, "model", m.Model)
			return nil
		}

		id, created, err := im.ledger.AddManual(m)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if created {
			stats.Created++
			im.logger.Debug("manual added", manualAttrs(id, m.Brand, m.Model)...)
		} else {
			stats.Existing++
		}
		return nil
	})

	im.logger.Info("manual import finished",
		"rows", stats.Rows,
		"created", stats.Created,
		"existing", stats.Existing,
		"skipped", stats.Skipped)
	return stats, err
}

// Brands adds every brand in r and marks those flagged indexed. Rows without
// a slug are skipped.
func (im *Importer) Brands(r io.Reader, format ImportFormat) (*model.ImportStats, error) {
	stats := &model.ImportStats{}
	err := eachRecord(r, format, func(line int, rec record) error {
		stats.Rows++
		b := brandFromRecord(rec)
		if b.Slug == "" {
			stats.Skipped++
			im.logger.Warn("skipping brand without slug", "line", line, "name", b.Name)
			return nil
		}
		indexed, err := rec.flag("indexed")
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		id, created, err := im.ledger.AddBrand(b)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if created {
			stats.Created++
		} else {
			stats.Existing++
		}

		if indexed {
			if err := im.ledger.MarkBrandIndexed(id); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			stats.Indexed++
		}
		return nil
	})

	im.logger.Info("brand import finished",
		"rows", stats.Rows,
		"created", stats.Created,
		"existing", stats.Existing,
		"skipped", stats.Skipped,
		"indexed", stats.Indexed)
	return stats, err
}

func manualFromRecord(rec record) (*model.NewManual, error) {
	source, err := model.ParseSource(rec.get("source"))
	if err != nil {
		return nil, err
	}
	return &model.NewManual{
		Brand:          rec.get("brand"),
		Model:          rec.get("model"),
		ManualURL:      rec.get("manual_url"),
		Source:         source,
		SourceID:       rec.get("source_id"),
		ModelURL:       rec.get("model_url"),
		ModelID:        rec.get("model_id"),
		DocType:        rec.get("doc_type"),
		DocDescription: rec.get("doc_description"),
		Category:       rec.get("category"),
	}, nil
}

func brandFromRecord(rec record) *model.NewBrand {
	return &model.NewBrand{
		Name:          rec.get("name"),
		Slug:          rec.get("slug"),
		BrandURL:      rec.get("brand_url"),
		Categories:    rec.list("categories"),
		CategoryURLs:  rec.list("category_urls"),
		AllCategories: rec.list("all_categories"),
	}
}

// record is one decoded listing row, independent of its encoding.
type record interface {
	get(key string) string
	list(key string) []string
	flag(key string) (bool, error)
}

func flagOf(rec record, key string) (bool, error) {
	raw := rec.get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parsing %s %q: %w", key, raw, err)
	}
	return v, nil
}

// eachRecord calls fn for every non-empty row of r with its 1-based line.
func eachRecord(r io.Reader, format ImportFormat, fn func(line int, rec record) error) error {
	switch format {
	case FormatCSV:
		return eachCSVRecord(r, fn)
	case FormatJSONL:
		return eachJSONRecord(r, fn)
	default:
		return fmt.Errorf("unknown import format %q", format)
	}
}

type csvRecord struct {
	header map[string]int
	values []string
}

func (c csvRecord) get(key string) string {
	idx, ok := c.header[key]
	if !ok || idx >= len(c.values) {
		return ""
	}
	return strings.TrimSpace(c.values[idx])
}

func (c csvRecord) list(key string) []string {
	return splitList(c.get(key))
}

func (c csvRecord) flag(key string) (bool, error) { return flagOf(c, key) }

func eachCSVRecord(r io.Reader, fn func(line int, rec record) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		line, _ := cr.FieldPos(0)
		if err := fn(line, csvRecord{header: header, values: row}); err != nil {
			return err
		}
	}
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		name = strings.TrimPrefix(name, "\ufeff")
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

type jsonRecord map[string]any

func (j jsonRecord) get(key string) string {
	switch v := j[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (j jsonRecord) list(key string) []string {
	switch v := j[key].(type) {
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		return splitList(v)
	default:
		return nil
	}
}

func (j jsonRecord) flag(key string) (bool, error) { return flagOf(j, key) }

func eachJSONRecord(r io.Reader, fn func(line int, rec record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec jsonRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
	return sc.Err()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
