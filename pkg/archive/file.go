package archive

import (
	"os"

	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

// EncodeToFile archives the table forest to a file.
func (c *Codec) EncodeToFile(table *datatable.Table, opts datatable.SerializeOptions, path string) error {
	data, err := c.Encode(table, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "write archive file")
	}
	return nil
}

// DecodeFile loads an archive file into mgr.
func DecodeFile(mgr *datatable.Manager, path string) (*datatable.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "read archive file")
	}
	return Decode(mgr, data)
}
