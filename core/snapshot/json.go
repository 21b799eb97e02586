package snapshot

import (
	"encoding/json"
	"io"

	"github.com/taxonresolver/taxonresolver/core/errors"
)

// EncodeJSON writes the JSON snapshot encoding to w.
func EncodeJSON(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(s), "encode json snapshot")
}

// DecodeJSON reads a JSON snapshot encoding from r.
func DecodeJSON(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, errors.Wrap(err, "decode json snapshot")
	}
	return s, nil
}
