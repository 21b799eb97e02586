package snapshot

import (
	"database/sql"
	"encoding/hex"
	"os"
	"strconv"
	"time"

	"github.com/zeebo/blake3"

	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/interval"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
)

// DriverType returns "cgo" for mattn/go-sqlite3, "purego" for
// modernc.org/sqlite, depending on the build tags in use.
func DriverType() string {
	return driverType
}

// DriverPackage returns the import path of the active SQLite driver.
func DriverPackage() string {
	return driverPackage
}

const sqliteSchema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE nodes (
	ord           INTEGER PRIMARY KEY,
	tax_id        TEXT NOT NULL UNIQUE,
	parent_tax_id TEXT NOT NULL,
	rank          TEXT NOT NULL,
	label         TEXT NOT NULL DEFAULT ''
);
CREATE TABLE intervals (
	tax_id TEXT NOT NULL UNIQUE,
	depth  INTEGER NOT NULL,
	lft    INTEGER NOT NULL,
	rgt    INTEGER NOT NULL
);
CREATE INDEX idx_intervals_lft ON intervals(lft);
`

// nodesDigest hashes the node table in storage order. It is stored in
// meta and verified on load, mirroring the binary format's payload
// digest.
func nodesDigest(nodes []taxonomy.Node) string {
	h := blake3.New()
	for _, n := range nodes {
		h.Write([]byte(n.ID))
		h.Write([]byte{0})
		h.Write([]byte(n.ParentID))
		h.Write([]byte{0})
		h.Write([]byte(n.Rank))
		h.Write([]byte{0})
		h.Write([]byte(n.Label))
		h.Write([]byte{0xff})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// writeSQLite stores a snapshot as a fresh SQLite database at path.
func writeSQLite(path string, s *Snapshot) error {
	// a snapshot replaces the file wholesale
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove existing snapshot")
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return errors.Wrap(err, "open sqlite snapshot")
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return errors.Wrap(err, "create snapshot schema")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin snapshot transaction")
	}
	defer tx.Rollback()

	meta := map[string]string{
		"version":      strconv.Itoa(s.Version),
		"id":           s.ID,
		"created_at":   s.CreatedAt.Format(time.RFC3339Nano),
		"variant":      string(s.Variant),
		"root":         string(s.Root),
		"nodes_blake3": nodesDigest(s.Nodes),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return errors.Wrapf(err, "insert meta %s", k)
		}
	}

	insNode, err := tx.Prepare(`INSERT INTO nodes (ord, tax_id, parent_tax_id, rank, label) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare node insert")
	}
	defer insNode.Close()
	for i, n := range s.Nodes {
		if _, err := insNode.Exec(i, string(n.ID), string(n.ParentID), string(n.Rank), n.Label); err != nil {
			return errors.Wrapf(err, "insert node %s", n.ID)
		}
	}

	insRow, err := tx.Prepare(`INSERT INTO intervals (tax_id, depth, lft, rgt) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare interval insert")
	}
	defer insRow.Close()
	for _, r := range s.Intervals {
		if _, err := insRow.Exec(string(r.ID), r.Depth, r.Lft, r.Rgt); err != nil {
			return errors.Wrapf(err, "insert interval %s", r.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "commit snapshot")
}

// readSQLite loads a snapshot from a SQLite database at path.
func readSQLite(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "stat sqlite snapshot")
	}
	db, err := sql.Open(driverName, path+"?mode=ro")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite snapshot")
	}
	defer db.Close()

	meta := make(map[string]string)
	rows, err := db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot meta")
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan snapshot meta")
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "read snapshot meta")
	}
	rows.Close()

	s := &Snapshot{
		ID:      meta["id"],
		Variant: Variant(meta["variant"]),
		Root:    taxonomy.TaxonID(meta["root"]),
	}
	if s.Version, err = strconv.Atoi(meta["version"]); err != nil {
		return nil, errors.Wrap(errors.ErrCorruptSnapshot, "bad version in meta")
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, meta["created_at"]); err != nil {
		return nil, errors.Wrap(errors.ErrCorruptSnapshot, "bad created_at in meta")
	}

	nodeRows, err := db.Query(`SELECT tax_id, parent_tax_id, rank, label FROM nodes ORDER BY ord`)
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot nodes")
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		var id, parent, rank, label string
		if err := nodeRows.Scan(&id, &parent, &rank, &label); err != nil {
			return nil, errors.Wrap(err, "scan snapshot node")
		}
		s.Nodes = append(s.Nodes, taxonomy.Node{
			ID:       taxonomy.TaxonID(id),
			ParentID: taxonomy.TaxonID(parent),
			Rank:     taxonomy.Rank(rank),
			Label:    label,
		})
	}
	if err := nodeRows.Err(); err != nil {
		return nil, errors.Wrap(err, "read snapshot nodes")
	}

	if got, want := nodesDigest(s.Nodes), meta["nodes_blake3"]; got != want {
		return nil, errors.Wrap(errors.ErrCorruptSnapshot, "node table blake3 digest mismatch")
	}

	rowRows, err := db.Query(`SELECT tax_id, depth, lft, rgt FROM intervals ORDER BY lft`)
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot intervals")
	}
	defer rowRows.Close()
	for rowRows.Next() {
		var r interval.Row
		var id string
		if err := rowRows.Scan(&id, &r.Depth, &r.Lft, &r.Rgt); err != nil {
			return nil, errors.Wrap(err, "scan snapshot interval")
		}
		r.ID = taxonomy.TaxonID(id)
		s.Intervals = append(s.Intervals, r)
	}
	if err := rowRows.Err(); err != nil {
		return nil, errors.Wrap(err, "read snapshot intervals")
	}
	return s, nil
}
