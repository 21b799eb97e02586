// Package archive reads NCBI taxonomy dump archives. It supports the
// two layouts NCBI publishes — taxdmp.zip and taxdump.tar.gz (plus
// tar.xz mirrors) — and bare .dmp files for tests and partial dumps.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Standard dump member names.
const (
	NodesMember = "nodes.dmp"
	NamesMember = "names.dmp"
)

// ErrMemberNotFound is returned when a dump archive lacks the
// requested member.
var ErrMemberNotFound = fmt.Errorf("dump member not found")

type kind int

const (
	kindZip kind = iota
	kindTarGz
	kindTarXz
	kindPlain
)

// Dump provides access to the members of a taxonomy dump file.
type Dump struct {
	path string
	kind kind
}

// Open classifies a dump file by extension. The file is opened lazily,
// once per member read.
func Open(path string) (*Dump, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	d := &Dump{path: path}
	switch {
	case strings.HasSuffix(path, ".zip"):
		d.kind = kindZip
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		d.kind = kindTarGz
	case strings.HasSuffix(path, ".tar.xz"):
		d.kind = kindTarXz
	case strings.HasSuffix(path, ".dmp"):
		d.kind = kindPlain
	default:
		return nil, fmt.Errorf("unsupported dump format: %s", path)
	}
	return d, nil
}

// Nodes returns a reader for the nodes.dmp member.
func (d *Dump) Nodes() (io.ReadCloser, error) {
	return d.Member(NodesMember)
}

// Names returns a reader for the names.dmp member. For bare .dmp
// inputs there is no names member; callers treat ErrMemberNotFound as
// "no labels available".
func (d *Dump) Names() (io.ReadCloser, error) {
	return d.Member(NamesMember)
}

// Member returns a reader for the named dump member.
func (d *Dump) Member(name string) (io.ReadCloser, error) {
	switch d.kind {
	case kindZip:
		return d.zipMember(name)
	case kindTarGz, kindTarXz:
		return d.tarMember(name)
	case kindPlain:
		if filepath.Base(d.path) != name {
			return nil, fmt.Errorf("%w: %s in %s", ErrMemberNotFound, name, d.path)
		}
		return os.Open(d.path)
	}
	return nil, fmt.Errorf("unsupported dump format: %s", d.path)
}

// zipMember streams a member from a zip dump. Closing the returned
// reader closes the underlying zip file.
func (d *Dump) zipMember(name string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(d.path)
	if err != nil {
		return nil, fmt.Errorf("open zip dump: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("open zip member %s: %w", name, err)
		}
		return &memberReader{Reader: rc, closers: []io.Closer{rc, zr}}, nil
	}
	zr.Close()
	return nil, fmt.Errorf("%w: %s in %s", ErrMemberNotFound, name, d.path)
}

// tarMember reads a member out of a compressed tar dump. Tar has no
// random access, so the member is read into memory in one sequential
// scan.
func (d *Dump) tarMember(name string) (io.ReadCloser, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("open tar dump: %w", err)
	}
	defer f.Close()

	var reader io.Reader
	switch d.kind {
	case kindTarXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xr
	default:
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gzr.Close()
		reader = gzr
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar header: %w", err)
		}
		if filepath.Base(header.Name) != name {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read tar member %s: %w", name, err)
		}
		return io.NopCloser(bytes.NewReader(content)), nil
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrMemberNotFound, name, d.path)
}

// memberReader closes a chain of underlying readers in order.
type memberReader struct {
	io.Reader
	closers []io.Closer
}

func (m *memberReader) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
