package archive

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"ytmeta/internal/archive/interfaces"
	"ytmeta/internal/structures"
)

// zstd frame magic number, little endian.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

// Decompress passes plain data through, so a database written before
// compression was switched on still loads.
func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	if !bytes.HasPrefix(val, zstdMagic) {
		return val, nil
	}
	return z.decoder.DecodeAll(val, nil)
}

func (z *ZstdCompression) Close() {
	_ = z.encoder.Close()
	z.decoder.Close()
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

// plainCompression keeps the database human readable.
type plainCompression struct {
	zstd interfaces.CompressorInterface
}

func (p *plainCompression) Compress(val []byte) ([]byte, error) {
	return val, nil
}

// Decompress still understands zstd, so switching compression off does not
// strand an existing compressed database.
func (p *plainCompression) Decompress(val []byte) ([]byte, error) {
	return p.zstd.Decompress(val)
}

func (p *plainCompression) Close() {
	p.zstd.Close()
}

// NewCompressor picks the compressor named by persistence.compress.
func NewCompressor(conf *structures.Config) (interfaces.CompressorInterface, error) {
	z, err := NewZstdCompressor()
	if err != nil {
		return nil, err
	}
	if conf.Persistence.Compress {
		return z, nil
	}
	return &plainCompression{zstd: z}, nil
}
