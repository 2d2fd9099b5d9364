// Package convert turns a JSON array of objects into SQL INSERT statements.
//
// The column list is taken from the keys of the first object, in the order
// they appear in the source text. Every later object is rendered against that
// same column list: keys it lacks become NULL, keys it adds are ignored.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

// ColumnSet is the ordered list of column names derived from the first record.
type ColumnSet []string

func (c ColumnSet) String() string { return strings.Join(c, ", ") }

// Record is one JSON object of the input array with its key order preserved.
type Record struct {
	keys   []string
	values map[string]Value
}

// Keys returns the record's field names in source order.
func (r *Record) Keys() []string { return r.keys }

// Get returns the value for key, or a KindMissing value when absent.
func (r *Record) Get(key string) Value {
	if v, ok := r.values[key]; ok {
		return v
	}
	return Value{Kind: KindMissing}
}

// InsertStatement is one INSERT for one record.
type InsertStatement struct {
	Table   string
	Columns ColumnSet
	Values  []Value // one per column, same order
}

// String renders the statement, terminated by a semicolon.
func (s InsertStatement) String() string {
	lits := make([]string, len(s.Values))
	for i, v := range s.Values {
		lits[i] = v.Literal()
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);", s.Table, s.Columns, strings.Join(lits, ", "))
}

// Args returns the statement's values as driver bind parameters.
func (s InsertStatement) Args() []any {
	args := make([]any, len(s.Values))
	for i, v := range s.Values {
		args[i] = v.Native()
	}
	return args
}

// Convert parses jsonText and returns one InsertStatement per array element.
func Convert(jsonText, tableName string) ([]InsertStatement, error) {
	return ConvertContext(context.Background(), jsonText, tableName)
}

// ConvertContext is Convert with a cancellation check between records.
func ConvertContext(ctx context.Context, jsonText, tableName string) ([]InsertStatement, error) {
	table := strings.TrimSpace(tableName)
	if table == "" {
		return nil, ErrEmptyTable
	}

	elems, err := parseArray([]byte(jsonText))
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return []InsertStatement{}, nil
	}

	first, err := parseRecord(elems[0], 0)
	if err != nil {
		return nil, err
	}
	columns := ColumnSet(first.Keys())

	statements := make([]InsertStatement, 0, len(elems))
	for i, raw := range elems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := first
		if i > 0 {
			if rec, err = parseRecord(raw, i); err != nil {
				return nil, err
			}
		}
		values := make([]Value, len(columns))
		for j, col := range columns {
			values[j] = rec.Get(col)
		}
		statements = append(statements, InsertStatement{Table: table, Columns: columns, Values: values})
	}
	return statements, nil
}

// Columns returns the ColumnSet a conversion of jsonText would use, without
// rendering any statement. An empty array yields an empty set.
func Columns(jsonText string) (ColumnSet, error) {
	elems, err := parseArray([]byte(jsonText))
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return ColumnSet{}, nil
	}
	first, err := parseRecord(elems[0], 0)
	if err != nil {
		return nil, err
	}
	return ColumnSet(first.Keys()), nil
}

func parseArray(data []byte) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return nil, &ParseError{Offset: syntaxErr.Offset, Err: err}
		case errors.As(err, &typeErr):
			return nil, &ParseError{Msg: fmt.Sprintf("top-level value is %s, want array", typeErr.Value), Err: err}
		default:
			return nil, &ParseError{Err: err}
		}
	}
	// A bare null unmarshals into a nil slice without error.
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ParseError{Msg: "top-level value is null, want array"}
	}
	return elems, nil
}

func parseRecord(raw json.RawMessage, index int) (*Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, &SchemaError{Index: index, Got: kindOf(raw)}
	}

	rec := &Record{values: make(map[string]Value)}
	// ObjectEach hands over keys already unescaped.
	err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		v, err := decodeValue(value, dataType)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		if _, seen := rec.values[name]; !seen {
			rec.keys = append(rec.keys, name)
		}
		rec.values[name] = v
		return nil
	})
	if err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("record %d: %v", index, err), Err: err}
	}
	return rec, nil
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Text: s}, nil
	case jsonparser.Number:
		return Value{Kind: KindNumber, Text: string(value)}, nil
	case jsonparser.Boolean:
		return Value{Kind: KindBool, Text: string(value)}, nil
	case jsonparser.Null:
		return Value{Kind: KindNull}, nil
	case jsonparser.Object, jsonparser.Array:
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return Value{}, err
		}
		kind := KindObject
		if dataType == jsonparser.Array {
			kind = KindArray
		}
		return Value{Kind: kind, Text: buf.String()}, nil
	default:
		return Value{}, fmt.Errorf("unsupported value %q", value)
	}
}

func kindOf(raw []byte) Kind {
	if len(raw) == 0 {
		return KindMissing
	}
	switch raw[0] {
	case '[':
		return KindArray
	case '"':
		return KindString
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	default:
		return KindNumber
	}
}
