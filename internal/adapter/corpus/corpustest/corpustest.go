// Package corpustest builds zipped CSV fixtures for tests.
package corpustest

import (
	"archive/zip"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"caselaw/internal/domain"
)

// Header is the source column layout, in case attribute order.
var Header = []string{
	"原始链接", "案号", "案件名称", "法院", "所属地区", "案件类型", "审理程序",
	"裁判日期", "公开日期", "当事人", "案由", "法律依据", "全文",
}

// Entry is one file inside a fixture archive. Rows are written verbatim when
// Raw is set.
type Entry struct {
	Name  string
	Cases []domain.Case
	Raw   string
}

// Row renders c in Header order.
func Row(c domain.Case) []string {
	row := make([]string, 0, len(Header))
	for _, f := range c.Fields() {
		row = append(row, *f)
	}
	return row
}

// WriteArchive creates a zip archive at path holding entries in order.
func WriteArchive(t testing.TB, path string, entries ...Entry) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatal(err)
		}
		if e.Raw != "" {
			if _, err := w.Write([]byte(e.Raw)); err != nil {
				t.Fatal(err)
			}
			continue
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(Header); err != nil {
			t.Fatal(err)
		}
		for _, c := range e.Cases {
			if err := cw.Write(Row(c)); err != nil {
				t.Fatal(err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}
