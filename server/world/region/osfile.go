package region

import "os"

// osBacking adapts *os.File to the backing interface.
type osBacking struct{ f *os.File }

// OpenFile opens (creating if necessary) the region file at path and wraps
// it as a backing for RegionFile.
func OpenFile(path string) (*RegionFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return Open(osBacking{f})
}

func (o osBacking) ReadAt(p []byte, off int64) (int, error)  { return o.f.ReadAt(p, off) }
func (o osBacking) WriteAt(p []byte, off int64) (int, error) { return o.f.WriteAt(p, off) }
func (o osBacking) Truncate(size int64) error                { return o.f.Truncate(size) }
func (o osBacking) Sync() error                              { return o.f.Sync() }
func (o osBacking) Size() (int64, error) {
	fi, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Close closes the underlying file.
func (o osBacking) Close() error { return o.f.Close() }
