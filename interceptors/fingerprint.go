package interceptors

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
)

var deterministic = proto.MarshalOptions{Deterministic: true}

// Fingerprint derives the cache key of a request from its method, the tenant
// (empty for shared responses) and the request payload. Protobuf messages are
// encoded deterministically; any other value is encoded as JSON.
func Fingerprint(fullMethod, tenant string, req any) (string, error) {
	payload, err := requestBytes(req)
	if err != nil {
		return "", fmt.Errorf("interceptors: fingerprint %s: %w", fullMethod, err)
	}
	h := sha256.New()
	h.Write([]byte(fullMethod))
	h.Write([]byte{0})
	h.Write([]byte(tenant))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func requestBytes(req any) ([]byte, error) {
	if m, ok := req.(proto.Message); ok {
		return deterministic.Marshal(m)
	}
	return json.Marshal(req)
}

// Cloner is implemented by non-protobuf response types that want the response
// cache to hand each caller its own copy.
type Cloner interface {
	Clone() any
}

// cloneResponse copies cached responses so a handler chain can never mutate
// the stored value. Values that are neither protobuf messages nor a [Cloner]
// are shared and must be treated as read-only.
func cloneResponse(v any) any {
	switch m := v.(type) {
	case proto.Message:
		return proto.Clone(m)
	case Cloner:
		return m.Clone()
	}
	return v
}
