package circuit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// DomainSpec separates circuit fingerprints from any other hash in the system.
const DomainSpec = "qsearch/circuit/v1"

// Fingerprint returns a content-addressed identity for a Spec.
//
// Format: hex(SHA256(DomainSpec + 0x00 + canonicalJSON(spec))).
// Two specs with the same registers and operation sequence always share a
// fingerprint regardless of how they were constructed.
func Fingerprint(s *Spec) (string, error) {
	data, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainSpec))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MarshalCanonical produces canonical JSON for a Spec: object keys sorted by
// UTF-16 code units, NFC-normalized strings, no HTML escaping, no whitespace.
func MarshalCanonical(s *Spec) ([]byte, error) {
	regs := make([]any, len(s.registers))
	for i, r := range s.registers {
		regs[i] = map[string]any{
			"name":      r.Name,
			"size":      r.Size,
			"classical": r.Classical,
		}
	}
	ops := make([]any, len(s.ops))
	for i, op := range s.ops {
		m := map[string]any{
			"kind":   string(op.Kind),
			"target": bitValue(op.Target),
		}
		if len(op.Controls) > 0 {
			m["controls"] = bitList(op.Controls)
		}
		if len(op.Ancillas) > 0 {
			m["ancillas"] = bitList(op.Ancillas)
		}
		if op.Clbit != nil {
			m["clbit"] = bitValue(*op.Clbit)
		}
		ops[i] = m
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, map[string]any{"registers": regs, "ops": ops}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func bitValue(b Bit) any {
	return map[string]any{"reg": b.Register, "idx": b.Index}
}

func bitList(bits []Bit) []any {
	out := make([]any, len(bits))
	for i, b := range bits {
		out[i] = bitValue(b)
	}
	return out
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case string:
		return writeCanonicalString(buf, val)
	case int:
		buf.WriteString(strconv.Itoa(val))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessUTF16(keys[i], keys[j]) })
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// lessUTF16 compares strings by UTF-16 code units.
func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
