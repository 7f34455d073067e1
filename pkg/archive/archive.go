// Package archive is the storage collaborator around the serialized
// table contract: it wraps a table forest's flat blob mapping in a
// versioned envelope with per-table compression, suitable for writing
// to disk or a blob store and loading back later.
package archive

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/quasar/pkg/compression"
	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
	jsonpool "github.com/ajitpratap0/quasar/pkg/json"
	"github.com/ajitpratap0/quasar/pkg/logger"
	"github.com/ajitpratap0/quasar/pkg/metrics"
)

// FormatVersion is the envelope format version this package writes.
const FormatVersion = 1

// Envelope is the on-disk container: format version, the compression
// algorithm the table blobs were encoded with, a creation timestamp,
// and the compressed per-table blobs keyed exactly like the serialized
// forest (root at 0). Blob bytes are base64 in the JSON encoding.
type Envelope struct {
	Version   int            `json:"version"`
	Algorithm string         `json:"algorithm"`
	CreatedAt time.Time      `json:"created_at"`
	Tables    map[int][]byte `json:"tables"`
}

// Codec encodes table forests into envelopes and back. A codec's
// algorithm applies to Encode; Decode honors whatever algorithm the
// envelope declares.
type Codec struct {
	algorithm  compression.Algorithm
	compressor compression.Compressor
}

// NewCodec creates a codec compressing with the given algorithm and
// level.
func NewCodec(algorithm compression.Algorithm, level compression.Level) (*Codec, error) {
	c, err := compression.NewCompressor(&compression.Config{
		Algorithm: algorithm,
		Level:     level,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "archive codec")
	}
	return &Codec{algorithm: algorithm, compressor: c}, nil
}

// Algorithm returns the codec's encode-side compression algorithm.
func (c *Codec) Algorithm() compression.Algorithm {
	return c.algorithm
}

// Encode serializes the table forest, compresses each table blob, and
// returns the JSON envelope bytes.
func (c *Codec) Encode(table *datatable.Table, opts datatable.SerializeOptions) ([]byte, error) {
	timer := metrics.NewTimer("archive_encode")
	blobs, err := table.Serialize(opts)
	if err != nil {
		return nil, err
	}

	env := Envelope{
		Version:   FormatVersion,
		Algorithm: string(c.algorithm),
		CreatedAt: time.Now().UTC(),
		Tables:    make(map[int][]byte, len(blobs)),
	}
	for id, blob := range blobs {
		compressed, err := c.compressor.Compress(blob)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "compress table blob")
		}
		env.Tables[id] = compressed
	}

	data, err := jsonpool.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "encode archive envelope")
	}
	metrics.ArchiveEncodeDuration.WithLabelValues(string(c.algorithm)).Observe(float64(timer.Stop().Nanoseconds()))
	logger.Debug("archive encoded",
		zap.Int("tables", len(env.Tables)),
		zap.String("algorithm", string(c.algorithm)),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

// Decode parses an envelope, decompresses every table blob with the
// algorithm the envelope declares, and reconstructs the forest into
// mgr. Envelope, version, and blob failures are unserialization
// errors.
func Decode(mgr *datatable.Manager, data []byte) (*datatable.Table, error) {
	var env Envelope
	if err := jsonpool.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnserialization, "decode archive envelope")
	}
	if env.Version != FormatVersion {
		return nil, errors.Newf(errors.ErrorTypeUnserialization, "unsupported archive version %d", env.Version)
	}

	algorithm := compression.Algorithm(env.Algorithm)
	timer := metrics.NewTimer("archive_decode")
	decompressor, err := compression.NewCompressor(&compression.Config{
		Algorithm: algorithm,
		Level:     compression.Default,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnserialization, "archive compression algorithm")
	}

	blobs := make(map[int][]byte, len(env.Tables))
	for id, compressed := range env.Tables {
		blob, err := decompressor.Decompress(compressed)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeUnserialization, "decompress table blob")
		}
		blobs[id] = blob
	}

	table, err := datatable.FromSerialized(mgr, blobs)
	if err != nil {
		return nil, err
	}
	metrics.ArchiveDecodeDuration.WithLabelValues(string(algorithm)).Observe(float64(timer.Stop().Nanoseconds()))
	return table, nil
}
