package export

import (
	"archive/zip"
	"bytes"

	"github.com/adforge/adforge/pkg/errors"
)

// entry is one file inside an archive. Entries keep their insertion
// order so archives are byte-stable for identical inputs.
type entry struct {
	Name string
	Data []byte
}

// buildZip packs entries into an in-memory zip archive.
func buildZip(entries []entry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.Name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncode, err, "create archive entry %q", e.Name)
		}
		if _, err := f.Write(e.Data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncode, err, "write archive entry %q", e.Name)
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "finalize archive")
	}
	return buf.Bytes(), nil
}
