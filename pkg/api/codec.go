// Package api defines the request and response messages of the roulette
// RPC services and the JSON codec they travel with.
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is the connect codec name; requests use application/json.
const CodecName = "json"

type jsonCodec struct{}

// Codec returns the codec shared by handlers and clients. It replaces
// connect's built-in JSON codec, which only accepts protobuf messages.
func Codec() connect.Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
