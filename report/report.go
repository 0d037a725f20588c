// Package report flattens the XML reports written by experiment runs into
// CSV rows.
package report

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hpcsweep.io/logger"
)

// Row is an ordered set of columns. Setting an existing key replaces its
// value in place.
type Row struct {
	keys   []string
	values map[string]string
}

func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r Row) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r Row) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Extractor turns one report file into rows.
type Extractor func(path string) ([]Row, error)

// Layout for cloc reports
/*
<experiment>
  <cloc_phase>
    <order>0</order>
    <commit>abc123</commit>
    <path>/scratch/astropy-commits/0</path>
    <report><cloc><languages>
      <language name="Python" files_count="10" blank="1" comment="2" code="3"/>
    </languages></cloc></report>
  </cloc_phase>
</experiment>
*/
type clocReport struct {
	Phases []struct {
		Order     string     `xml:"order"`
		Commit    string     `xml:"commit"`
		Path      string     `xml:"path"`
		Languages []attrList `xml:"report>cloc>languages>language"`
	} `xml:"cloc_phase"`
}

type attrList struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

// Layout for performance reports
/*
<experiment>
  <config><property key="nodes" value="4"/></config>
  <report>
    <time id="clone" t="12.5"/>
    <commits n="100"/>
  </report>
</experiment>
*/
type perfReport struct {
	Properties []struct {
		Key   string `xml:"key,attr"`
		Value string `xml:"value,attr"`
	} `xml:"config>property"`
	Times []struct {
		ID string `xml:"id,attr"`
		T  string `xml:"t,attr"`
	} `xml:"report>time"`
	Commits *struct {
		N string `xml:"n,attr"`
	} `xml:"report>commits"`
}

func decode(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()
	if err := xml.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("report: %s: %w", path, err)
	}
	return nil
}

// ClocRows yields one row per language per cloc phase: order, commit and
// path, then the language attributes.
func ClocRows(path string) ([]Row, error) {
	var rep clocReport
	if err := decode(path, &rep); err != nil {
		return nil, err
	}
	var rows []Row
	for _, phase := range rep.Phases {
		logger.DebugPrintf("Processing commit: %s", strings.TrimSpace(phase.Commit))
		for _, lang := range phase.Languages {
			var row Row
			row.Set("order", strings.TrimSpace(phase.Order))
			row.Set("commit", strings.TrimSpace(phase.Commit))
			row.Set("path", strings.TrimSpace(phase.Path))
			for _, attr := range lang.Attrs {
				row.Set(attr.Name.Local, attr.Value)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// PerfRows yields a single row: config properties, then timings by id, then
// the commit count as "n".
func PerfRows(path string) ([]Row, error) {
	var rep perfReport
	if err := decode(path, &rep); err != nil {
		return nil, err
	}
	if rep.Commits == nil {
		return nil, fmt.Errorf("report: %s: missing report/commits", path)
	}
	var row Row
	for _, p := range rep.Properties {
		row.Set(p.Key, p.Value)
	}
	for _, t := range rep.Times {
		row.Set(t.ID, t.T)
	}
	row.Set("n", rep.Commits.N)
	return []Row{row}, nil
}

// FindReports lists the regular files in dir whose names start with
// prefix, sorted.
func FindReports(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Convert runs extract over files and writes all rows as CSV. The header
// comes from the first row; later rows may leave columns empty but may not
// add new ones. It returns the number of rows written.
func Convert(files []string, extract Extractor, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	var header []string
	count := 0
	for _, file := range files {
		logger.InfoPrintf("Processing %s", file)
		rows, err := extract(file)
		if err != nil {
			return count, err
		}
		for _, row := range rows {
			if header == nil {
				header = row.Keys()
				if err := cw.Write(header); err != nil {
					return count, fmt.Errorf("report: write header: %w", err)
				}
			}
			record, err := align(header, row)
			if err != nil {
				return count, fmt.Errorf("report: %s: %w", file, err)
			}
			if err := cw.Write(record); err != nil {
				return count, fmt.Errorf("report: write row: %w", err)
			}
			count++
		}
	}
	cw.Flush()
	return count, cw.Error()
}

func align(header []string, row Row) ([]string, error) {
	known := make(map[string]struct{}, len(header))
	record := make([]string, len(header))
	for i, key := range header {
		known[key] = struct{}{}
		record[i], _ = row.Get(key)
	}
	for _, key := range row.Keys() {
		if _, ok := known[key]; !ok {
			return nil, fmt.Errorf("column %q not in header", key)
		}
	}
	return record, nil
}
