package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// NoCompressor stores data as is.
type NoCompressor struct{}

func (NoCompressor) Name() string { return "none" }

func (NoCompressor) Compress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

func (NoCompressor) Decompress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

// LZ4Compressor writes an LZ4 block behind a header carrying the original
// length and whether the block is compressed at all. Input LZ4 cannot
// shrink is stored raw.
type LZ4Compressor struct{}

const (
	lz4Raw   = 0
	lz4Block = 1
)

func (LZ4Compressor) Name() string { return "lz4" }

func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	header := make([]byte, binary.MaxVarintLen64+1)
	n := binary.PutUvarint(header, uint64(len(data)))

	block := make([]byte, lz4.CompressBlockBound(len(data)))
	size, err := lz4.CompressBlock(data, block, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if size == 0 || size >= len(data) {
		header[n] = lz4Raw
		return append(header[:n+1], data...), nil
	}
	header[n] = lz4Block
	return append(header[:n+1], block[:size]...), nil
}

func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 || len(data) < n+1 {
		return nil, ErrCorrupt
	}
	mode, payload := data[n], data[n+1:]

	switch mode {
	case lz4Raw:
		if uint64(len(payload)) != length {
			return nil, ErrCorrupt
		}
		return append([]byte(nil), payload...), nil
	case lz4Block:
		out := make([]byte, length)
		size, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(size) != length {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, ErrCorrupt
	}
}
