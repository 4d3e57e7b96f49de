// Package codec converts stored values to and from bytes.
//
// Every codec names its wire format. coverband folds the format into the
// backend key, so two codecs never read each other's blobs.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	// Format is a short, stable tag such as "json" or "cbor".
	// Change it whenever the encoding changes incompatibly.
	Format() string
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
