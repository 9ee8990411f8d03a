package js

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrDepth is returned for values nested deeper than [MaxDepth], which
// includes every cyclic value.
var ErrDepth = NewError("maximum nesting depth exceeded")

// MaxDepth limits how deeply nested a rendered value may be.
const MaxDepth = 256

// Source is implemented by values that render themselves as JavaScript.
//
// JSSource returns an expression that evaluates to the receiver's value.
type Source interface {
	JSSource() (string, error)
}

// Raw is JavaScript source text that is already valid code. It renders as
// itself, verbatim and unescaped.
type Raw string

// JSSource implements [Source].
func (r Raw) JSSource() (string, error) { return string(r), nil }

// String returns r as a string.
func (r Raw) String() string { return string(r) }

// Render returns JavaScript source for an expression equivalent to v.
//
// Integers beyond [MaxSafeInteger] in magnitude render as BigInt literals
// such as 9007199254740993n, so their value is kept but their type is
// bigint. Numbers inside values encoded as JSON, such as structs, are not
// converted and may lose precision.
func Render(v any) (string, error) {
	var b strings.Builder

	err := write(&b, v, 0)
	if err != nil {
		return "", err
	}

	return b.String(), nil
}

// MustRender is like [Render] but panics on error.
func MustRender(v any) string {
	s, err := Render(v)
	if err != nil {
		panic(err)
	}

	return s
}

// Quote returns s as a double-quoted JavaScript string literal.
//
// Besides quotes, backslashes and control characters, the HTML-sensitive
// characters <, > and & and the line terminators U+2028 and U+2029 are
// escaped, so the literal can be placed inside an HTML script element.
// Invalid UTF-8 is replaced with U+FFFD.
func Quote(s string) string {
	data, _ := json.Marshal(s) // strings always encode

	return string(data)
}

//nolint:gochecknoglobals
var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

func write(b *strings.Builder, v any, depth int) error {
	if depth > MaxDepth {
		return ErrDepth.With(slog.Int("max_depth", MaxDepth))
	}

	switch val := v.(type) {
	case nil:
		b.WriteString("null")

		return nil

	case Source:
		s, err := val.JSSource()
		if err != nil {
			return ErrEncode.Wrap(err).
				With(slog.String("type", typeName(v)))
		}

		b.WriteString(s)

		return nil

	case string:
		b.WriteString(Quote(val))

		return nil

	case bool:
		b.WriteString(strconv.FormatBool(val))

		return nil

	case int:
		writeInt(b, int64(val))

		return nil

	case int64:
		writeInt(b, val)

		return nil

	case uint64:
		writeUint(b, val)

		return nil

	case float64:
		b.WriteString(formatFloat(val, 64))

		return nil

	case float32:
		b.WriteString(formatFloat(float64(val), 32))

		return nil

	case []byte:
		if val == nil {
			b.WriteString("null")

			return nil
		}

		b.WriteString("new Uint8Array([")

		for i, c := range val {
			if i > 0 {
				b.WriteByte(',')
			}

			b.WriteString(strconv.Itoa(int(c)))
		}

		b.WriteString("])")

		return nil

	case time.Time:
		b.WriteString("new Date(")
		b.WriteString(Quote(val.Format(time.RFC3339Nano)))
		b.WriteString(")")

		return nil

	case json.Marshaler:
		return writeJSON(b, v)
	}

	return writeReflect(b, reflect.ValueOf(v), depth)
}

func writeReflect(b *strings.Builder, rv reflect.Value, depth int) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			b.WriteString("null")

			return nil
		}

		return write(b, rv.Elem().Interface(), depth+1)

	case reflect.String:
		b.WriteString(Quote(rv.String()))

	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeInt(b, rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		writeUint(b, rv.Uint())

	case reflect.Float32:
		b.WriteString(formatFloat(rv.Float(), 32))

	case reflect.Float64:
		b.WriteString(formatFloat(rv.Float(), 64))

	case reflect.Slice:
		if rv.IsNil() {
			b.WriteString("null")

			return nil
		}

		return writeList(b, rv, depth)

	case reflect.Array:
		return writeList(b, rv, depth)

	case reflect.Map:
		if rv.IsNil() {
			b.WriteString("null")

			return nil
		}

		return writeObject(b, rv, depth)

	case reflect.Struct:
		return writeJSON(b, rv.Interface())

	default:
		return ErrUnsupported.With(slog.String("type", rv.Type().String()))
	}

	return nil
}

func writeList(b *strings.Builder, rv reflect.Value, depth int) error {
	b.WriteByte('[')

	for i := range rv.Len() {
		if i > 0 {
			b.WriteByte(',')
		}

		err := write(b, rv.Index(i).Interface(), depth+1)
		if err != nil {
			return err
		}
	}

	b.WriteByte(']')

	return nil
}

// MaxSafeInteger is the largest integer a JavaScript number represents
// exactly. Integers of greater magnitude render as BigInt literals.
const MaxSafeInteger = 1<<53 - 1

func writeInt(b *strings.Builder, i int64) {
	b.WriteString(strconv.FormatInt(i, 10))

	if i > MaxSafeInteger || i < -MaxSafeInteger {
		b.WriteByte('n')
	}
}

func writeUint(b *strings.Builder, u uint64) {
	b.WriteString(strconv.FormatUint(u, 10))

	if u > MaxSafeInteger {
		b.WriteByte('n')
	}
}

// writeKey writes an object literal property name and its colon. The key
// __proto__ is written in computed form, which defines an own property
// instead of setting the object's prototype.
func writeKey(b *strings.Builder, key string) {
	if key == "__proto__" {
		b.WriteByte('[')
		b.WriteString(Quote(key))
		b.WriteString("]:")

		return
	}

	b.WriteString(Quote(key))
	b.WriteByte(':')
}

// writeObject writes a map as an object literal with its keys sorted.
func writeObject(b *strings.Builder, rv reflect.Value, depth int) error {
	type entry struct {
		key   string
		value reflect.Value
	}

	entries := make([]entry, 0, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		key, err := objectKey(iter.Key())
		if err != nil {
			return err
		}

		entries = append(entries, entry{key, iter.Value()})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		return strings.Compare(a.key, b.key)
	})

	b.WriteByte('{')

	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}

		writeKey(b, e.key)

		err := write(b, e.value.Interface(), depth+1)
		if err != nil {
			return err
		}
	}

	b.WriteByte('}')

	return nil
}

// objectKey converts a map key to the string JavaScript would use as the
// property name.
func objectKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}

	if k.Type().Implements(textMarshalerType) {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "null", nil
		}

		text, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", ErrEncode.Wrap(err).
				With(slog.String("type", k.Type().String()))
		}

		return string(text), nil
	}

	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(k.Float(), k.Type().Bits()), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	default:
		return fmt.Sprint(k.Interface()), nil
	}
}

// writeJSON writes v encoded as JSON, which is a valid JavaScript
// expression.
func writeJSON(b *strings.Builder, v any) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)

	err := enc.Encode(v)
	if err != nil {
		return ErrEncode.Wrap(err).With(slog.String("type", typeName(v)))
	}

	b.Write(bytes.TrimRight(buf.Bytes(), "\n"))

	return nil
}

// formatFloat formats f as a JavaScript number literal, using the same
// cutoffs as JavaScript's own Number.prototype.toString for switching to
// exponent notation.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	format := byte('f')

	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}

	s := strconv.FormatFloat(f, format, -1, bits)

	if format == 'e' {
		// Clean up e-09 to e-9.
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}

	return s
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return reflect.TypeOf(v).String()
}
