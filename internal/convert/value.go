package convert

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the JSON type a Value was decoded from.
type Kind int

const (
	KindMissing Kind = iota // key absent from the record
	KindNull
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "missing"
	}
}

// Value is a single decoded field of a Record.
//
// Text holds the unescaped string for strings, the exact source text for
// numbers, "true"/"false" for booleans and compact JSON for objects/arrays.
type Value struct {
	Kind Kind
	Text string
}

// Literal renders the value as SQL literal text.
func (v Value) Literal() string {
	switch v.Kind {
	case KindString, KindObject, KindArray:
		return Quote(v.Text)
	case KindNumber:
		return v.Text
	case KindBool:
		if v.Text == "true" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "NULL"
	}
}

// Native returns the value as a Go value suitable for a driver bind
// parameter or a document field.
func (v Value) Native() any {
	switch v.Kind {
	case KindString, KindObject, KindArray:
		return v.Text
	case KindNumber:
		if i, err := strconv.ParseInt(v.Text, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v.Text, 64); err == nil {
			return f
		}
		return v.Text
	case KindBool:
		return v.Text == "true"
	default:
		return nil
	}
}

// Quote wraps s in single quotes, doubling any embedded single quote.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Unquote reverses Quote.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return "", fmt.Errorf("not a quoted literal: %q", lit)
	}
	inner := lit[1 : len(lit)-1]
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\'' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(inner) || inner[i+1] != '\'' {
			return "", fmt.Errorf("unescaped quote at offset %d in %q", i+1, lit)
		}
		b.WriteByte('\'')
		i++
	}
	return b.String(), nil
}
