package snapshot

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// FormatVersion is the document version written by Encode. Decode rejects
// anything newer.
const FormatVersion = 1

// Document is the plaintext body of a snapshot. Entries hold the raw store
// values keyed by store key; they are carried as bytes so a malformed record
// survives the round trip unchanged.
type Document struct {
	Version   int               `json:"version"`
	ProfileID string            `json:"profileId"`
	Source    string            `json:"source"`
	CreatedAt time.Time         `json:"createdAt"`
	Entries   map[string][]byte `json:"entries"`
}

// Codec turns documents into compressed bytes and back. A Codec is safe
// for concurrent use.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Encode marshals doc and compresses the result.
func (c *Codec) Encode(doc Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decode decompresses data and unmarshals the document inside.
func (c *Codec) Decode(data []byte) (Document, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return Document{}, fmt.Errorf("decompressing snapshot: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if doc.Version < 1 || doc.Version > FormatVersion {
		return Document{}, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}
	return doc, nil
}

// Close releases the decoder's goroutines.
func (c *Codec) Close() {
	c.decoder.Close()
}
