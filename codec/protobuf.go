package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Protobuf stores values as a google.protobuf.Struct message. V goes through
// its JSON shape first, so the usual `json` tags apply. This suits backends
// and tooling that already speak protobuf without requiring generated types.
//
// Numbers travel as doubles: integers are exact up to 2^53.
type Protobuf[V any] struct{}

var _ Codec[struct{}] = Protobuf[struct{}]{}

func (Protobuf[V]) Format() string { return "pb" }

func (Protobuf[V]) Encode(v V) ([]byte, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(js, &m); err != nil {
		return nil, fmt.Errorf("protobuf codec: value is not a JSON object: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func (Protobuf[V]) Decode(b []byte) (V, error) {
	var v V
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return v, err
	}
	js, err := json.Marshal(s.AsMap())
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(js, &v)
	return v, err
}
