package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// FromJSON decodes a JSON document. Object key order is preserved and
// integral numbers that fit an int64 become Int.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decoding json: trailing data")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return NULL, nil
	case bool:
		return NativeBool(t), nil
	case string:
		return &String{Value: t}, nil
	case json.Number:
		return FromNumber(t)
	case json.Delim:
		switch t {
		case '[':
			list := &List{Elements: []Value{}}
			for dec.More() {
				e, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list.Elements = append(list.Elements, e)
			}
			_, err := dec.Token()
			return list, err
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			_, err := dec.Token()
			return obj, err
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// FromNumber converts a JSON number literal.
func FromNumber(n json.Number) (Value, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return &Int{Value: i}, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return &Float{Value: f}, nil
}

// ToJSON encodes v as compact JSON.
func ToJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v := v.(type) {
	case *Null:
		buf.WriteString("null")
	case *Bool:
		buf.WriteString(strconv.FormatBool(v.Value))
	case *Int:
		buf.WriteString(strconv.FormatInt(v.Value, 10))
	case *Float:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return fmt.Errorf("cannot encode %v as json", v.Value)
		}
		buf.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	case *String:
		b, err := json.Marshal(v.Value)
		if err != nil {
			return err
		}
		buf.Write(b)
	case *List:
		buf.WriteByte('[')
		for i, e := range v.Elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		for i, k := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := encodeValue(buf, v.Fields[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode %s as json", v.Type())
	}
	return nil
}
