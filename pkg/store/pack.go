package store

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

// Pack format, zstd compressed as a whole:
// [4 bytes: header length (big-endian)]
// [header JSON: PackHeader]
// [payload JSON]

const (
	HeaderLengthSize = 4
	MaxHeaderSize    = 1 << 20

	PackFormat = "scorelink-index/1"
)

type PackHeader struct {
	Format string `json:"format"`
	Digest string `json:"digest"`
	Size   int    `json:"size"`
}

// EncodePack serializes v as JSON and wraps it in a compressed pack.
func EncodePack(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	sum := blake3.Sum256(payload)
	headerJSON, err := json.Marshal(PackHeader{
		Format: PackFormat,
		Digest: hex.EncodeToString(sum[:]),
		Size:   len(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling header: %w", err)
	}

	var pack bytes.Buffer
	headerLen := make([]byte, HeaderLengthSize)
	binary.BigEndian.PutUint32(headerLen, uint32(len(headerJSON)))
	pack.Write(headerLen)
	pack.Write(headerJSON)
	pack.Write(payload)

	var compressed bytes.Buffer
	encoder, err := zstd.NewWriter(&compressed)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	if _, err := encoder.Write(pack.Bytes()); err != nil {
		encoder.Close()
		return nil, fmt.Errorf("compressing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("closing encoder: %w", err)
	}
	return compressed.Bytes(), nil
}

// DecodePack verifies a pack and unmarshals its payload into v.
func DecodePack(blob []byte, v any) (*PackHeader, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing: %v", ErrCorrupted, err)
	}
	if len(data) < HeaderLengthSize {
		return nil, fmt.Errorf("%w: pack too small: %d bytes", ErrCorrupted, len(data))
	}

	headerLen := binary.BigEndian.Uint32(data[:HeaderLengthSize])
	if headerLen > MaxHeaderSize {
		return nil, fmt.Errorf("%w: header too large: %d bytes", ErrCorrupted, headerLen)
	}
	if int(HeaderLengthSize+headerLen) > len(data) {
		return nil, fmt.Errorf("%w: header length exceeds pack size", ErrCorrupted)
	}

	var header PackHeader
	if err := json.Unmarshal(data[HeaderLengthSize:HeaderLengthSize+headerLen], &header); err != nil {
		return nil, fmt.Errorf("%w: parsing header: %v", ErrCorrupted, err)
	}
	if header.Format != PackFormat {
		return nil, fmt.Errorf("%w: unknown format %q", ErrCorrupted, header.Format)
	}

	payload := data[HeaderLengthSize+headerLen:]
	sum := blake3.Sum256(payload)
	if len(payload) != header.Size || hex.EncodeToString(sum[:]) != header.Digest {
		return nil, ErrChecksum
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}
	return &header, nil
}
