// Package wireformat implements the two binary-JSON traversal
// strategies DocBench exists to compare: a sequential length-prefixed
// scan and a hash-indexed offset jump. Neither reference adapter talks
// to a real database; they encode/decode this format in-process so the
// benchmark has something concrete to measure server_traversal_time
// and client_traversal_time against.
//
// Grounded on the varint length-prefixed encoding in encoder.go /
// decoder.go (payloadEncoder / payloadDecoder), generalized from FTDC's
// delta-of-numeric-series scheme to a general field encoding: each
// field is [1-byte type tag][4-byte key length][key][4-byte value
// length][value], recursively, so a reader can always skip a field it
// doesn't want by its length prefix alone — the mechanism a sequential
// scan actually pays for.
package wireformat

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Type tags for encoded values.
const (
	tagNull uint8 = iota
	tagBool
	tagInt64
	tagFloat64
	tagString
	tagArray
	tagObject
)

// Encode renders an ordered field list (as produced by a document's
// Keys()/Get() pair) into the sequential length-prefixed wire format.
func Encode(keys []string, get func(key string) (interface{}, bool)) []byte {
	var buf []byte
	for _, k := range keys {
		v, _ := get(k)
		buf = appendField(buf, k, v)
	}
	return buf
}

func appendField(buf []byte, key string, value interface{}) []byte {
	valBytes := encodeValue(value)
	buf = append(buf, fieldTag(value))
	buf = appendUint32(buf, uint32(len(key)))
	buf = append(buf, key...)
	buf = appendUint32(buf, uint32(len(valBytes)))
	buf = append(buf, valBytes...)
	return buf
}

func fieldTag(v interface{}) uint8 {
	switch v.(type) {
	case nil:
		return tagNull
	case bool:
		return tagBool
	case int, int32, int64:
		return tagInt64
	case float32, float64:
		return tagFloat64
	case string:
		return tagString
	case []interface{}:
		return tagArray
	case map[string]interface{}:
		return tagObject
	default:
		return tagNull
	}
}

func encodeValue(v interface{}) []byte {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if t {
			return []byte{1}
		}
		return []byte{0}
	case int:
		return encodeInt64(int64(t))
	case int32:
		return encodeInt64(int64(t))
	case int64:
		return encodeInt64(t)
	case float32:
		return encodeFloat64(float64(t))
	case float64:
		return encodeFloat64(t)
	case string:
		return []byte(t)
	case []interface{}:
		var out []byte
		for i, e := range t {
			out = appendField(out, indexKey(i), e)
		}
		return out
	case map[string]interface{}:
		var out []byte
		for _, k := range sortedKeys(t) {
			out = appendField(out, k, t[k])
		}
		return out
	default:
		return nil
	}
}

func encodeInt64(v int64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(v))
	return out
}

func encodeFloat64(v float64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, math.Float64bits(v))
	return out
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// insertion sort is adequate here: nested objects in generated
	// documents are small (§4.5's fieldsPerLevel), and determinism
	// matters far more than asymptotic cost.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func indexKey(i int) string {
	return "[" + itoa(i) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

// EncodeWithIndex encodes the same sequential wire format as Encode,
// additionally returning a key-to-byte-offset index for every
// top-level field. The hash-indexed adapter uses this index to jump
// straight to a field's encoded record instead of scanning past every
// preceding field.
func EncodeWithIndex(keys []string, get func(key string) (interface{}, bool)) ([]byte, map[string]int64) {
	var buf []byte
	index := make(map[string]int64, len(keys))
	for _, k := range keys {
		index[k] = int64(len(buf))
		v, _ := get(k)
		buf = appendField(buf, k, v)
	}
	return buf, index
}

// ReadFieldAt decodes the single field record starting at byte offset
// off within buf, without scanning anything before or after it.
func ReadFieldAt(buf []byte, off int64) (string, interface{}, error) {
	f, _, err := readField(buf, int(off))
	if err != nil {
		return "", nil, err
	}
	v, err := decodeValue(f.tag, f.value)
	return f.key, v, err
}

// field is one decoded top-level field: its key, type tag, and raw
// value bytes (still encoded — Decode recurses to interpret them).
type field struct {
	key   string
	tag   uint8
	value []byte
}

// ScanForField performs a sequential scan over buf, decoding each
// field's key/length prefix in turn and skipping the ones that don't
// match, until it finds key or reaches the end. This is the cost model
// for "sequential length-prefixed scanning": an O(n) walk over every
// preceding field, however short.
func ScanForField(buf []byte, key string) (interface{}, bool, error) {
	off := 0
	for off < len(buf) {
		f, next, err := readField(buf, off)
		if err != nil {
			return nil, false, err
		}
		if f.key == key {
			v, err := decodeValue(f.tag, f.value)
			return v, true, err
		}
		off = next
	}
	return nil, false, nil
}

// Decode fully decodes buf into an ordered key/value slice.
func Decode(buf []byte) ([]string, map[string]interface{}, error) {
	var keys []string
	vals := make(map[string]interface{})
	off := 0
	for off < len(buf) {
		f, next, err := readField(buf, off)
		if err != nil {
			return nil, nil, err
		}
		v, err := decodeValue(f.tag, f.value)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, f.key)
		vals[f.key] = v
		off = next
	}
	return keys, vals, nil
}

func readField(buf []byte, off int) (field, int, error) {
	if off+1+4 > len(buf) {
		return field{}, 0, errors.New("truncated field header")
	}
	tag := buf[off]
	off++
	keyLen := int(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	if off+keyLen+4 > len(buf) {
		return field{}, 0, errors.New("truncated field key/length")
	}
	key := string(buf[off : off+keyLen])
	off += keyLen
	valLen := int(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	if off+valLen > len(buf) {
		return field{}, 0, errors.New("truncated field value")
	}
	val := buf[off : off+valLen]
	off += valLen
	return field{key: key, tag: tag, value: val}, off, nil
}

func decodeValue(tag uint8, raw []byte) (interface{}, error) {
	switch tag {
	case tagNull:
		return nil, nil
	case tagBool:
		return len(raw) > 0 && raw[0] == 1, nil
	case tagInt64:
		if len(raw) != 8 {
			return nil, errors.New("malformed int64 value")
		}
		return int64(binary.LittleEndian.Uint64(raw)), nil
	case tagFloat64:
		if len(raw) != 8 {
			return nil, errors.New("malformed float64 value")
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil
	case tagString:
		return string(raw), nil
	case tagArray:
		_, vals, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(vals))
		for i := range out {
			out[i] = vals[indexKey(i)]
		}
		return out, nil
	case tagObject:
		_, vals, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		return vals, nil
	default:
		return nil, errors.Errorf("unknown wire type tag %d", tag)
	}
}
