package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/dche/callsign/internal/core"
)

// Compress deflates data with zlib at best compression. Signaling
// messages are small maps of short strings plus SDP text, which
// compresses well at the top level without measurable CPU cost.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib flush: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zlib frame back to the encoded message bytes.
func Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	return out, nil
}

// EncodeFrame turns an outbound envelope into a wire frame:
// CBOR-encode, then compress.
func EncodeFrame(msg Outbound) (core.Frame, error) {
	encoded, err := Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	frame, err := Compress(encoded)
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", msg.Type, err)
	}
	return core.Frame(frame), nil
}

// DecodeFrame turns a wire frame into a typed inbound message:
// decompress, CBOR-decode, validate against the known message shapes.
// Both a corrupt frame and a malformed encoding after successful
// decompression fail the same way; the caller logs and drops the frame.
func DecodeFrame(frame core.Frame) (Inbound, error) {
	encoded, err := Decompress(frame)
	if err != nil {
		return nil, err
	}
	return DecodeMessage(encoded)
}
