package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes the records kept under a key.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// NewCodec returns a codec by name.
func NewCodec(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}

// JSONCodec encodes records as JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// MsgpackCodec encodes records as MessagePack, keyed by the json struct tags
// so both codecs agree on field names.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// Load reads key and decodes it into v. It reports ok=false when the key is
// absent. Undecodable data is a storage failure.
func Load(ctx context.Context, kv KV, codec Codec, key string, v any) (bool, error) {
	data, ok, err := kv.Read(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := codec.Unmarshal(data, v); err != nil {
		return false, storageErr("decoding", key, err)
	}
	return true, nil
}

// Put encodes v and writes it under key.
func Put(ctx context.Context, kv KV, codec Codec, key string, v any) error {
	data, err := codec.Marshal(v)
	if err != nil {
		return storageErr("encoding", key, err)
	}
	return kv.Write(ctx, key, data)
}
