package report

import (
	"compress/gzip"
	"io"

	"github.com/ugorji/go/codec"
)

// WriteBinary writes a Batch as a gzipped msgpack.
func (b Batch) WriteBinary(w io.Writer) error {
	gzwriter, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if err = codec.NewEncoder(gzwriter, &codec.MsgpackHandle{}).Encode(&b); err != nil {
		return err
	}
	return gzwriter.Close() // otherwise the content won't get flushed to the output stream
}

// ReadBinary reads bytes into a Batch.
//
// Will decompress the binary if gzipped is true, and will use the given
// codecHandle to decode it.
func (b *Batch) ReadBinary(r io.Reader, gzipped bool, codecHandle codec.Handle) error {
	if gzipped {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer gz.Close()
		r = gz
	}
	return codec.NewDecoder(r, codecHandle).Decode(b)
}

// MakeFromBinary constructs a Batch from a gzipped msgpack.
func MakeFromBinary(r io.Reader) (*Batch, error) {
	var b Batch
	if err := b.ReadBinary(r, true, &codec.MsgpackHandle{}); err != nil {
		return nil, err
	}
	return &b, nil
}
