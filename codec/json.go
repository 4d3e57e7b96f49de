package codec

import "encoding/json"

// JSON encodes values with encoding/json. The zero value is ready to use.
// This is coverband's portable default: a UTF-8 JSON object readable by any
// other implementation of the store.
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Format() string { return "json" }

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
