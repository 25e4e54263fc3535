package store

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"caselaw/internal/domain"
)

// EncodeKey returns the 4-byte big-endian key for id, so byte order matches
// numeric order.
func EncodeKey(id uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, id)
	return k
}

// DecodeKey is the inverse of EncodeKey.
func DecodeKey(k []byte) (uint32, error) {
	if len(k) != 4 {
		return 0, fmt.Errorf("invalid key length %d", len(k))
	}
	return binary.BigEndian.Uint32(k), nil
}

// EncodeCase serializes c as protobuf wire fields numbered by declaration
// order. Empty attributes are omitted.
func EncodeCase(c domain.Case) []byte {
	var b []byte
	for i, f := range c.Fields() {
		if *f == "" {
			continue
		}
		b = protowire.AppendTag(b, protowire.Number(i+1), protowire.BytesType)
		b = protowire.AppendString(b, *f)
	}
	return b
}

// DecodeCase parses a value written by EncodeCase. Unknown field numbers are
// skipped so newer writers stay readable.
func DecodeCase(b []byte) (domain.Case, error) {
	var c domain.Case
	fields := c.Fields()
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.Case{}, fmt.Errorf("failed to decode tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.BytesType && num >= 1 && int(num) <= len(fields) {
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return domain.Case{}, fmt.Errorf("failed to decode field %d: %w", num, protowire.ParseError(n))
			}
			*fields[num-1] = v
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return domain.Case{}, fmt.Errorf("failed to skip field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return c, nil
}
