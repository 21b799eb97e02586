package snapshot

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/taxonresolver/taxonresolver/core/errors"
)

// magic identifies binary snapshot files.
var magic = [8]byte{'T', 'A', 'X', 'S', 'N', 'A', 'P', '1'}

// flagXZ marks an xz-compressed payload.
const flagXZ = 0x01

// Binary layout: 8-byte magic, 1 flag byte, 32-byte blake3 digest of
// the uncompressed gob payload, then the payload (xz-compressed when
// the flag is set). The digest is over the uncompressed bytes so it is
// independent of the compression choice.

// EncodeBinary writes the binary snapshot encoding to w.
func EncodeBinary(w io.Writer, s *Snapshot, compress bool) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(s); err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	digest := blake3.Sum256(payload.Bytes())

	header := make([]byte, 0, len(magic)+1+len(digest))
	header = append(header, magic[:]...)
	flags := byte(0)
	if compress {
		flags |= flagXZ
	}
	header = append(header, flags)
	header = append(header, digest[:]...)
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "write snapshot header")
	}

	if !compress {
		_, err := w.Write(payload.Bytes())
		return errors.Wrap(err, "write snapshot payload")
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "xz writer")
	}
	if _, err := xw.Write(payload.Bytes()); err != nil {
		return errors.Wrap(err, "write compressed payload")
	}
	return errors.Wrap(xw.Close(), "close xz writer")
}

// DecodeBinary reads a binary snapshot encoding from r, verifying the
// blake3 digest before decoding.
func DecodeBinary(r io.Reader) (*Snapshot, error) {
	header := make([]byte, len(magic)+1+32)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, "read snapshot header")
	}
	if !bytes.Equal(header[:len(magic)], magic[:]) {
		return nil, errors.Wrap(errors.ErrCorruptSnapshot, "bad magic")
	}
	flags := header[len(magic)]
	var want [32]byte
	copy(want[:], header[len(magic)+1:])

	payloadReader := r
	if flags&flagXZ != 0 {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "xz reader")
		}
		payloadReader = xr
	}
	payload, err := io.ReadAll(payloadReader)
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot payload")
	}

	if blake3.Sum256(payload) != want {
		return nil, errors.Wrap(errors.ErrCorruptSnapshot, "blake3 digest mismatch")
	}

	s := &Snapshot{}
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(s); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return s, nil
}
