// Package snapshot serializes state vectors to a compact binary format
// with optional block compression, so long-running preparations can be
// checkpointed and reloaded without replaying their circuits.
//
// Layout: a fixed header (magic, version, compression algorithm,
// dimension vector, amplitude count) followed by the amplitudes as
// little-endian float64 pairs, chunked into independently compressed
// blocks. Each block carries [UncompressedSize uint32][CompressedSize
// uint32]; CompressedSize == 0 marks a block stored raw, which is also
// the fallback whenever compression fails to shrink a block.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/quditgo/state"
)

// Compression selects the block compression algorithm.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

const (
	version          = 1
	headerFixedSize  = 4 + 1 + 1 + 4
	blockHeaderSize  = 8
	defaultBlockSize = 256 * 1024
	amplitudeSize    = 16 // two float64s

	// maxParticles bounds the header's particle count before any
	// allocation driven by untrusted input.
	maxParticles = 1 << 16
)

var magic = [4]byte{'Q', 'D', 'S', 'N'}

var (
	// ErrBadMagic indicates the reader is not positioned at a snapshot.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrUnsupportedVersion indicates a snapshot written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrCorrupt indicates a structurally invalid snapshot.
	ErrCorrupt = errors.New("snapshot: corrupt data")
)

// ZSTD encoder/decoder pools, shared across snapshots.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// SaveOptions configures Save.
type SaveOptions struct {
	// Compression is the block compression algorithm.
	Compression Compression
	// BlockSize is the uncompressed block size in bytes.
	BlockSize int
}

// DefaultSaveOptions are the options used when none are supplied.
var DefaultSaveOptions = SaveOptions{
	Compression: CompressionZSTD,
	BlockSize:   defaultBlockSize,
}

// LoadOptions configures Load.
type LoadOptions struct {
	// MaxAmplitudes caps the state space of the loaded vector, with the
	// same semantics as state.New.
	MaxAmplitudes int
	// Admit, when set, is called with the header's dimension vector
	// after the header is parsed and before any amplitude memory is
	// allocated or payload decoded. Returning an error aborts the load
	// with that error. Callers use it to reserve memory budgets against
	// untrusted snapshot sizes.
	Admit func(dims state.Dims) error
}

// DefaultLoadOptions are the options used when none are supplied.
var DefaultLoadOptions = LoadOptions{}

// Save writes v to w in snapshot format.
func Save(w io.Writer, v *state.Vector, optFns ...func(o *SaveOptions)) error {
	opts := DefaultSaveOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = defaultBlockSize
	}

	dims := v.Dims()
	header := make([]byte, 0, headerFixedSize+4*len(dims))
	header = append(header, magic[:]...)
	header = append(header, version, byte(opts.Compression))
	header = binary.LittleEndian.AppendUint32(header, uint32(len(dims)))
	for _, d := range dims {
		header = binary.LittleEndian.AppendUint32(header, uint32(d))
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	amps := v.Amplitudes()
	payload := make([]byte, 0, opts.BlockSize)
	for _, a := range amps {
		payload = binary.LittleEndian.AppendUint64(payload, math.Float64bits(real(a)))
		payload = binary.LittleEndian.AppendUint64(payload, math.Float64bits(imag(a)))
		if len(payload) >= opts.BlockSize {
			if err := writeBlock(w, payload, opts.Compression); err != nil {
				return err
			}
			payload = payload[:0]
		}
	}
	if len(payload) > 0 {
		if err := writeBlock(w, payload, opts.Compression); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a snapshot from r and reconstructs the state vector.
func Load(r io.Reader, optFns ...func(o *LoadOptions)) (*state.Vector, error) {
	opts := DefaultLoadOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	fixed := make([]byte, headerFixedSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if [4]byte(fixed[:4]) != magic {
		return nil, ErrBadMagic
	}
	if fixed[4] != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, fixed[4])
	}
	compression := Compression(fixed[5])
	numParticles := binary.LittleEndian.Uint32(fixed[6:])
	if numParticles == 0 || numParticles > maxParticles {
		return nil, fmt.Errorf("%w: %d particle(s)", ErrCorrupt, numParticles)
	}

	dimsRaw := make([]byte, 4*numParticles)
	if _, err := io.ReadFull(r, dimsRaw); err != nil {
		return nil, fmt.Errorf("snapshot: read dimensions: %w", err)
	}
	dims := make(state.Dims, numParticles)
	for i := range dims {
		dims[i] = int(binary.LittleEndian.Uint32(dimsRaw[4*i:]))
	}

	if opts.Admit != nil {
		if err := opts.Admit(dims); err != nil {
			return nil, err
		}
	}

	// state.New validates the dimensions and enforces the amplitude
	// budget before the payload is touched.
	v, err := state.New(dims, opts.MaxAmplitudes)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, v.Len()*amplitudeSize)
	off := 0
	for off < len(payload) {
		block, err := readBlock(r, compression)
		if err != nil {
			return nil, err
		}
		if off+len(block) > len(payload) {
			return nil, fmt.Errorf("%w: payload overrun", ErrCorrupt)
		}
		copy(payload[off:], block)
		off += len(block)
	}

	amps := v.Amplitudes()
	for i := range amps {
		re := math.Float64frombits(binary.LittleEndian.Uint64(payload[i*amplitudeSize:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(payload[i*amplitudeSize+8:]))
		amps[i] = complex(re, im)
	}
	return v, nil
}

// writeBlock compresses one block and writes it with its header. Blocks
// that compression fails to shrink below 90% are stored raw.
func writeBlock(w io.Writer, data []byte, compression Compression) error {
	var compressed []byte
	var err error

	switch compression {
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}
	if err != nil {
		return fmt.Errorf("snapshot: compress block: %w", err)
	}

	header := make([]byte, blockHeaderSize)
	binary.LittleEndian.PutUint32(header[0:], uint32(len(data)))

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		binary.LittleEndian.PutUint32(header[4:], 0)
		if _, err := w.Write(header); err != nil {
			return fmt.Errorf("snapshot: write block: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("snapshot: write block: %w", err)
		}
		return nil
	}

	binary.LittleEndian.PutUint32(header[4:], uint32(len(compressed)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("snapshot: write block: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("snapshot: write block: %w", err)
	}
	return nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

// readBlock reads and decompresses one block.
func readBlock(r io.Reader, compression Compression) ([]byte, error) {
	header := make([]byte, blockHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("snapshot: read block header: %w", err)
	}
	uncompressedSize := binary.LittleEndian.Uint32(header[0:])
	compressedSize := binary.LittleEndian.Uint32(header[4:])
	if uncompressedSize == 0 {
		return nil, fmt.Errorf("%w: empty block", ErrCorrupt)
	}

	if compressedSize == 0 {
		data := make([]byte, uncompressedSize)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("snapshot: read block: %w", err)
		}
		return data, nil
	}

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("snapshot: read block: %w", err)
	}

	switch compression {
	case CompressionLZ4:
		data := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(compressed, data)
		if err != nil {
			return nil, fmt.Errorf("snapshot: decompress block: %w", err)
		}
		if uint32(n) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return data, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		data, err := dec.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("snapshot: decompress block: %w", err)
		}
		if uint32(len(data)) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("%w: compressed block with no algorithm", ErrCorrupt)
	}
}
