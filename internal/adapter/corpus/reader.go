// Package corpus streams case rows out of zipped CSV exports.
package corpus

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"caselaw/internal/domain"
)

// Columns maps source CSV headers to case attribute names. Columns not listed
// here are ignored.
var Columns = map[string]string{
	"原始链接": "doc_id",
	"案号":   "case_id",
	"案件名称": "case_name",
	"法院":   "court",
	"所属地区": "region",
	"案件类型": "case_type",
	"审理程序": "procedure",
	"裁判日期": "judgment_date",
	"公开日期": "public_date",
	"当事人":  "parties",
	"案由":   "cause",
	"法律依据": "legal_basis",
	"全文":   "full_text",
}

const utf8BOM = "\ufeff"

// SkipEntry may be returned by a Walk callback to move on to the next entry
// without reading the rest of the current one.
var SkipEntry = errors.New("skip this entry")

// Row is one decoded CSV record and where it came from.
type Row struct {
	Archive string
	Entry   string
	Line    int
	Case    domain.Case
}

// DecodeError reports an entry that cannot be decoded. It aborts the walk.
type DecodeError struct {
	Archive string
	Entry   string
	Line    int
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s!%s line %d: %v", e.Archive, e.Entry, e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Reader selects archives and entries by doublestar pattern.
type Reader struct {
	archivePattern string
	entryPattern   string
}

func NewReader(archivePattern, entryPattern string) *Reader {
	if archivePattern == "" {
		archivePattern = "**/*.zip"
	}
	if entryPattern == "" {
		entryPattern = "**/*.csv"
	}
	return &Reader{
		archivePattern: archivePattern,
		entryPattern:   entryPattern,
	}
}

// Archives lists the archives under root in lexical order of their relative
// path. That order defines corpus order across runs.
func (r *Reader) Archives(root string) ([]string, error) {
	var archives []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		matched, err := doublestar.Match(r.archivePattern, filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("invalid archive pattern %q: %w", r.archivePattern, err)
		}
		if matched {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(archives)
	return archives, nil
}

// Walk calls fn for every row of every matching entry, in archive order, then
// central-directory entry order, then row order. Only one entry is open at a
// time. An error from fn stops the walk and is returned as is.
func (r *Reader) Walk(ctx context.Context, root string, fn func(Row) error) error {
	archives, err := r.Archives(root)
	if err != nil {
		return err
	}
	for _, path := range archives {
		if err := r.walkArchive(ctx, path, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) walkArchive(ctx context.Context, path string, fn func(Row) error) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		matched, err := doublestar.Match(r.entryPattern, f.Name)
		if err != nil {
			return fmt.Errorf("invalid entry pattern %q: %w", r.entryPattern, err)
		}
		if !matched {
			continue
		}
		if err := r.walkEntry(ctx, path, f, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) walkEntry(ctx context.Context, archive string, f *zip.File, fn func(Row) error) error {
	rc, err := f.Open()
	if err != nil {
		return &DecodeError{Archive: archive, Entry: f.Name, Err: err}
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return &DecodeError{Archive: archive, Entry: f.Name, Line: 1, Err: err}
	}
	positions, err := mapHeader(header)
	if err != nil {
		return &DecodeError{Archive: archive, Entry: f.Name, Line: 1, Err: err}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line, _ := cr.FieldPos(0)
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			return &DecodeError{Archive: archive, Entry: f.Name, Line: line, Err: err}
		}

		var c domain.Case
		fields := c.Fields()
		for i, pos := range positions {
			*fields[i] = record[pos]
		}
		if err := fn(Row{Archive: archive, Entry: f.Name, Line: line, Case: c}); err != nil {
			if errors.Is(err, SkipEntry) {
				return nil
			}
			return err
		}
	}
}

// mapHeader returns, for each case attribute in declared order, the column
// index holding it.
func mapHeader(header []string) ([]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if name, ok := Columns[strings.TrimSpace(h)]; ok {
			byName[name] = i
		}
	}

	positions := make([]int, len(domain.FieldNames))
	var missing []string
	for i, name := range domain.FieldNames {
		pos, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		positions[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return positions, nil
}
