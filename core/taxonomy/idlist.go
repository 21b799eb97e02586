package taxonomy

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/taxonresolver/taxonresolver/core/errors"
)

// ListOptions controls how tax ID list files are parsed.
type ListOptions struct {
	// Sep splits each line into fields; when empty the whole trimmed
	// line is the ID.
	Sep string
	// Field selects the field holding the ID after splitting on Sep.
	Field int
}

// ReadIDList parses a line-oriented list of tax IDs. Lines whose first
// non-blank character is '#' are comments; they and blank lines are
// skipped. Order is preserved
// and duplicates are kept; callers needing a set use NewIDSet.
func ReadIDList(r io.Reader, opts ListOptions) ([]TaxonID, error) {
	var ids []TaxonID
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id := line
		if opts.Sep != "" {
			fields := strings.Split(line, opts.Sep)
			if opts.Field >= len(fields) {
				continue
			}
			id = strings.TrimSpace(fields[opts.Field])
		}
		if id != "" {
			ids = append(ids, TaxonID(id))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read tax id list")
	}
	return ids, nil
}

// LoadIDList reads a tax ID list from a file.
func LoadIDList(path string, opts ListOptions) ([]TaxonID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open tax id list %s", path)
	}
	defer f.Close()
	return ReadIDList(f, opts)
}
