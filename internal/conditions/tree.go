package conditions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/esm-dev/preconstruct/internal/npm"
)

// Kind is the kind of a condition tree node.
type Kind uint8

const (
	KindPath Kind = iota
	KindNull
	KindConditions
)

// Tree is a condition tree of the imports field: a path, `null`, or an
// object mapping condition names to subtrees.
// Branches keep the declared order since the first matching condition wins.
type Tree struct {
	Kind     Kind
	Path     string
	Branches []Branch
}

// Branch is a single `condition: subtree` entry of a condition object.
type Branch struct {
	Condition string
	Tree      *Tree
}

// Leaf is a resolved value: a path or `null`.
type Leaf struct {
	Path string
	Null bool
}

func (l Leaf) String() string {
	if l.Null {
		return "null"
	}
	return l.Path
}

// MarshalJSON implements the json.Marshaler interface
func (l Leaf) MarshalJSON() ([]byte, error) {
	if l.Null {
		return []byte("null"), nil
	}
	return json.Marshal(l.Path)
}

// Entry is a specifier of the imports field with its condition tree.
type Entry struct {
	Specifier string
	Tree      *Tree
}

// Imports is a parsed imports field, entries in declared order.
type Imports struct {
	Entries []Entry
}

// ParseImportsJSON parses the raw JSON of an imports field.
func ParseImportsJSON(data []byte) (*Imports, error) {
	var obj npm.JSONObject
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, &SchemaError{Path: "imports", Message: err.Error()}
	}
	return ParseImports(obj)
}

// ParseImports validates the imports field decoded by the ordered JSON
// decoder of the npm package.
func ParseImports(raw any) (*Imports, error) {
	var obj npm.JSONObject
	switch v := raw.(type) {
	case npm.JSONObject:
		obj = v
	case *npm.JSONObject:
		obj = *v
	default:
		return nil, &SchemaError{Path: "imports", Message: "expected an object but got " + describe(raw)}
	}

	imports := &Imports{Entries: make([]Entry, 0, obj.Len())}
	for _, specifier := range obj.Keys() {
		path := "imports[" + strconv.Quote(specifier) + "]"
		if !strings.HasPrefix(specifier, "#") {
			return nil, &SchemaError{Path: path, Message: "specifier must start with \"#\""}
		}
		value, _ := obj.Get(specifier)
		tree, err := parseTree(value, path)
		if err != nil {
			return nil, err
		}
		imports.Entries = append(imports.Entries, Entry{Specifier: specifier, Tree: tree})
	}
	return imports, nil
}

func parseTree(value any, path string) (*Tree, error) {
	switch v := value.(type) {
	case nil:
		return &Tree{Kind: KindNull}, nil
	case string:
		return &Tree{Kind: KindPath, Path: v}, nil
	case npm.JSONObject:
		tree := &Tree{Kind: KindConditions, Branches: make([]Branch, 0, v.Len())}
		for _, condition := range v.Keys() {
			child, _ := v.Get(condition)
			subtree, err := parseTree(child, joinPath(path, condition))
			if err != nil {
				return nil, err
			}
			tree.Branches = append(tree.Branches, Branch{Condition: condition, Tree: subtree})
		}
		return tree, nil
	case []any:
		return nil, &SchemaError{Path: path, Message: "array syntax is not supported in the imports field"}
	case map[string]any:
		return nil, &SchemaError{Path: path, Message: "object was decoded without key order"}
	default:
		return nil, &SchemaError{Path: path, Message: "expected a string, null or an object but got " + describe(value)}
	}
}

func joinPath(path string, key string) string {
	if isIdentifier(key) {
		return path + "." + key
	}
	return path + "[" + strconv.Quote(key) + "]"
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64, int:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
