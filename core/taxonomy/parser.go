package taxonomy

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/taxonresolver/taxonresolver/core/errors"
)

// fieldDelim separates fields in NCBI dump files. Lines look like
// "9606\t|\t9605\t|\tspecies\t|\t...". Fields are trimmed of
// surrounding whitespace after the split.
const fieldDelim = "\t|"

// minNodeFields is the number of leading nodes.dmp fields this core
// consumes: tax_id, parent_tax_id, rank. Trailing fields are ignored.
const minNodeFields = 3

// Record is a raw (id, parent, rank) triple read from nodes.dmp.
type Record struct {
	ID       TaxonID
	ParentID TaxonID
	Rank     Rank
	Line     int // 1-based line number in the dump, for diagnostics
}

// SplitLine splits one dump line on the field delimiter and trims each
// field. The trailing delimiter every dump line carries yields a final
// empty field, which is dropped.
func SplitLine(line string) []string {
	parts := strings.Split(line, fieldDelim)
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, strings.TrimSpace(p))
	}
	if n := len(fields); n > 0 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	return fields
}

// ScanResult holds the records parsed from nodes.dmp plus the malformed
// lines that were skipped. Malformed lines are collected, not fatal, so
// one bad line never aborts a whole ingestion.
type ScanResult struct {
	Records   []Record
	Malformed []*errors.MalformedRecordError
}

// ScanNodes parses nodes.dmp records from r. Lines with fewer than
// three fields are recorded in Malformed and skipped; an error is
// returned only when reading itself fails.
func ScanNodes(r io.Reader) (*ScanResult, error) {
	res := &ScanResult{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := SplitLine(line)
		if len(fields) < minNodeFields || fields[0] == "" || fields[1] == "" {
			res.Malformed = append(res.Malformed,
				errors.NewMalformedRecord(lineNo, len(fields), truncate(line, 120)))
			continue
		}
		res.Records = append(res.Records, Record{
			ID:       TaxonID(fields[0]),
			ParentID: TaxonID(fields[1]),
			Rank:     NormalizeRank(fields[2]),
			Line:     lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan nodes.dmp")
	}
	return res, nil
}

// ScanNames parses names.dmp and returns the scientific name for each
// tax ID. When two taxa share a scientific name, the unique-name variant
// (field 3) is used instead, matching NCBI's disambiguation convention.
func ScanNames(r io.Reader) (map[TaxonID]string, error) {
	type entry struct {
		id     TaxonID
		unique string
	}

	labels := make(map[TaxonID]string)
	byName := make(map[string][]entry)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := SplitLine(line)
		// tax_id, name_txt, unique name, name class
		if len(fields) < 4 || fields[3] != "scientific name" {
			continue
		}
		id := TaxonID(fields[0])
		labels[id] = fields[1]
		byName[fields[1]] = append(byName[fields[1]], entry{id: id, unique: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan names.dmp")
	}

	for _, entries := range byName {
		if len(entries) < 2 {
			continue
		}
		for _, e := range entries {
			if e.unique != "" {
				labels[e.id] = e.unique
			}
		}
	}
	return labels, nil
}

// truncate shortens s to at most n bytes, cutting on a rune boundary
// so diagnostic text stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
