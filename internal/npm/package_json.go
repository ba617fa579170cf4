package npm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// PackageJSON defines the package.json of a package being built.
// The whole document is kept as an ordered object so it can be written back
// without reordering the fields the user wrote.
type PackageJSON struct {
	Name    string
	Version string
	Type    string
	Imports JSONObject
	Exports JSONObject
	doc     JSONObject
}

// ParsePackageJSON parses the given package.json data.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var doc JSONObject
	if err := doc.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	p := &PackageJSON{doc: doc}
	p.Name, _ = doc.GetString("name")
	p.Version, _ = doc.GetString("version")
	p.Type, _ = doc.GetString("type")
	if v, ok := doc.Get("imports"); ok {
		obj, isObj := v.(JSONObject)
		if !isObj {
			return nil, fmt.Errorf("invalid \"imports\" field: expect an object but got %s", typeName(v))
		}
		p.Imports = obj
	}
	if v, ok := doc.Get("exports"); ok {
		switch e := v.(type) {
		case string:
			if len(e) > 0 {
				p.Exports = NewJSONObject([]string{"."}, map[string]any{".": e})
			}
		case JSONObject:
			if isConditionsObject(e) {
				// `{"import": ..., "default": ...}` is the conditions of the "." entry
				p.Exports = NewJSONObject([]string{"."}, map[string]any{".": e})
			} else {
				p.Exports = e
			}
		}
	}
	return p, nil
}

// isConditionsObject returns true if no key of the exports object is a subpath.
func isConditionsObject(obj JSONObject) bool {
	for _, key := range obj.Keys() {
		if strings.HasPrefix(key, ".") {
			return false
		}
	}
	return obj.Len() > 0
}

// ReadPackageJSON reads and parses the package.json file.
func ReadPackageJSON(filename string) (*PackageJSON, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	p, err := ParsePackageJSON(data)
	if err != nil {
		return nil, fmt.Errorf("fail to parse %s: %w", filename, err)
	}
	return p, nil
}

// HasImports returns true if the package declares a non-empty "imports" field.
func (p *PackageJSON) HasImports() bool {
	return p.Imports.Len() > 0
}

// SetExport sets `exports[entry]` and keeps the order of existing fields.
func (p *PackageJSON) SetExport(entry string, value any) {
	p.Exports.Set(entry, value)
	p.doc.Set("exports", p.Exports)
}

// Encode encodes the package.json with two-space indentation and a
// trailing newline, the layout npm writes.
func (p *PackageJSON) Encode() ([]byte, error) {
	data, err := p.doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	if err := json.Indent(buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteFile writes the package.json back to the given file.
func (p *PackageJSON) WriteFile(filename string) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// JSONObject represents a JSON object with ordered keys
type JSONObject struct {
	keys   []string
	values map[string]any
}

// NewJSONObject creates a new JSONObject with the given keys and values
func NewJSONObject(keys []string, values map[string]any) JSONObject {
	return JSONObject{
		keys:   keys,
		values: values,
	}
}

// Len returns the length of the JSON object
func (obj *JSONObject) Len() int {
	return len(obj.keys)
}

// Keys returns the keys of the JSON object
func (obj *JSONObject) Keys() []string {
	return obj.keys
}

// Values returns the values of the JSON object
func (obj *JSONObject) Values() map[string]any {
	return obj.values
}

// Get returns the value of the key in the JSON object
func (obj *JSONObject) Get(key string) (any, bool) {
	v, ok := obj.values[key]
	return v, ok
}

// GetString returns the value of the key if it is a string.
func (obj *JSONObject) GetString(key string) (string, bool) {
	v, ok := obj.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set sets the value of the key, appending the key if it is new.
func (obj *JSONObject) Set(key string, value any) {
	if obj.values == nil {
		obj.values = make(map[string]any)
	}
	if _, ok := obj.values[key]; !ok {
		obj.keys = append(obj.keys, key)
	}
	obj.values[key] = value
}

// MarshalJSON implements the json.Marshaler interface, keys are written in
// their original order and HTML characters are not escaped.
func (obj JSONObject) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, key := range obj.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(key); err != nil {
			return nil, err
		}
		trimNewline(buf)
		buf.WriteByte(':')
		if err := enc.Encode(obj.values[key]); err != nil {
			return nil, err
		}
		trimNewline(buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// trimNewline removes the newline json.Encoder appends after each value.
func trimNewline(buf *bytes.Buffer) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface. Numbers are kept
// as json.Number so they are written back unchanged.
func (obj *JSONObject) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	o, ok := v.(JSONObject)
	if !ok {
		return fmt.Errorf("expect a JSON object but got %s", typeName(v))
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after the JSON object")
	}
	*obj = o
	return nil
}

// decodeValue reads the next value from the decoder, objects are decoded as
// JSONObject and arrays as []any.
func decodeValue(dec *json.Decoder) (any, error) {
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := t.(json.Delim)
	if !ok {
		return t, nil
	}
	switch delim {
	case '{':
		obj := JSONObject{values: map[string]any{}}
		for dec.More() {
			t, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("invalid object key %v", t)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			// a duplicated key keeps its first position, last value wins
			obj.Set(key, value)
		}
		// closing '}'
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		// closing ']'
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case []any:
		return "array"
	case JSONObject:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
