package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec marshals the plain Go messages of this package as JSON. It is
// registered under the "json" name, replacing Connect's protobuf JSON codec.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

// WithCodec is the option that must be set on every handler and client.
func WithCodec() connect.Option {
	return connect.WithCodec(Codec{})
}
