package snapshot

import (
	"os"

	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
)

// Write captures idx and stores it at path in the given format.
func Write(idx taxonomy.Index, path string, format Format) error {
	s, err := Capture(idx)
	if err != nil {
		return errors.NewSnapshot("write", path, string(format), err)
	}
	return WriteSnapshot(s, path, format)
}

// WriteSnapshot stores an already-captured snapshot at path.
func WriteSnapshot(s *Snapshot, path string, format Format) error {
	wrap := func(err error) error {
		if err == nil {
			return nil
		}
		return errors.NewSnapshot("write", path, string(format), err)
	}

	if format == FormatSQLite {
		return wrap(writeSQLite(path, s))
	}

	f, err := os.Create(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()

	switch format {
	case FormatBin:
		err = EncodeBinary(f, s, false)
	case FormatBinXZ:
		err = EncodeBinary(f, s, true)
	case FormatJSON:
		err = EncodeJSON(f, s)
	default:
		err = errors.Wrapf(errors.ErrUnsupportedFormat, "snapshot format %q", format)
	}
	if err != nil {
		return wrap(err)
	}
	return wrap(f.Close())
}

// Read loads the serialized snapshot at path without rebuilding the
// index. Useful for inspecting snapshot metadata.
func Read(path string, format Format) (*Snapshot, error) {
	wrap := func(err error) error {
		return errors.NewSnapshot("read", path, string(format), err)
	}

	if format == FormatSQLite {
		s, err := readSQLite(path)
		if err != nil {
			return nil, wrap(err)
		}
		return s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, wrap(err)
	}
	defer f.Close()

	var s *Snapshot
	switch format {
	case FormatBin, FormatBinXZ:
		// the flag byte says whether the payload is compressed; both
		// names accept both encodings
		s, err = DecodeBinary(f)
	case FormatJSON:
		s, err = DecodeJSON(f)
	default:
		err = errors.Wrapf(errors.ErrUnsupportedFormat, "snapshot format %q", format)
	}
	if err != nil {
		return nil, wrap(err)
	}
	return s, nil
}

// Load reads the snapshot at path and rebuilds its index.
func Load(path string, format Format) (taxonomy.Index, error) {
	s, err := Read(path, format)
	if err != nil {
		return nil, err
	}
	idx, err := s.Restore()
	if err != nil {
		return nil, errors.NewSnapshot("restore", path, string(format), err)
	}
	return idx, nil
}
