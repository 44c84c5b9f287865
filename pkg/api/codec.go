package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is the name the JSON codec registers under. It replaces
// Connect's built-in protobuf JSON codec of the same name.
const CodecName = "json"

type jsonCodec struct{}

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

// Codec returns the codec used by every handler and client in this package.
func Codec() connect.Codec { return jsonCodec{} }
