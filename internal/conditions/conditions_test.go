package conditions

import (
	"errors"
	"strings"
	"testing"

	"github.com/esm-dev/preconstruct/internal/npm"
)

func parseJSONObject(t *testing.T, data string) npm.JSONObject {
	t.Helper()
	var obj npm.JSONObject
	if err := obj.UnmarshalJSON([]byte(data)); err != nil {
		t.Fatalf("invalid fixture: %v", err)
	}
	return obj
}

func mustParseImports(t *testing.T, data string) *Imports {
	t.Helper()
	imports, err := ParseImportsJSON([]byte(data))
	if err != nil {
		t.Fatalf("ParseImportsJSON: %v", err)
	}
	return imports
}

func joinCombinations(a []Combination) string {
	s := make([]string, len(a))
	for i, c := range a {
		s[i] = c.String()
	}
	return strings.Join(s, " ")
}

func TestParseImports(t *testing.T) {
	imports := mustParseImports(t, `{
		"#a": {"worker": "./a.js", "browser": {"development": "./a-browser-dev.js", "default": "./a-browser.js"}, "default": "./a.js"},
		"#b": "./b.js",
		"#c": null
	}`)
	if len(imports.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(imports.Entries))
	}
	a := imports.Entries[0]
	if a.Specifier != "#a" || a.Tree.Kind != KindConditions {
		t.Fatalf("unexpected first entry: %+v", a)
	}
	var keys []string
	for _, branch := range a.Tree.Branches {
		keys = append(keys, branch.Condition)
	}
	if strings.Join(keys, ",") != "worker,browser,default" {
		t.Fatalf("declared order must be kept, got %v", keys)
	}
	if nested := a.Tree.Branches[1].Tree; nested.Kind != KindConditions || len(nested.Branches) != 2 {
		t.Fatalf("unexpected nested tree: %+v", nested)
	}
	if b := imports.Entries[1]; b.Specifier != "#b" || b.Tree.Kind != KindPath || b.Tree.Path != "./b.js" {
		t.Fatalf("unexpected second entry: %+v", b)
	}
	if c := imports.Entries[2]; c.Specifier != "#c" || c.Tree.Kind != KindNull {
		t.Fatalf("unexpected third entry: %+v", c)
	}
}

func TestParseImportsSchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		imports  string
		wantPath string
	}{
		{"missing hash", `{"a": "./a.js"}`, `imports["a"]`},
		{"array", `{"#a": ["./a.js", "./b.js"]}`, `imports["#a"]`},
		{"number", `{"#a": {"node": 1}}`, `imports["#a"].node`},
		{"boolean", `{"#a": {"node": {"default": false}}}`, `imports["#a"].node.default`},
		{"non identifier key", `{"#a": {"react-native": true}}`, `imports["#a"]["react-native"]`},
		{"nested array", `{"#a": {"default": ["./a.js"]}}`, `imports["#a"].default`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseImportsJSON([]byte(tt.imports))
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected a SchemaError, got %v", err)
			}
			if schemaErr.Path != tt.wantPath {
				t.Fatalf("expected path %s, got %s", tt.wantPath, schemaErr.Path)
			}
			if !strings.HasPrefix(err.Error(), tt.wantPath+": ") {
				t.Fatalf("error message should start with the path: %v", err)
			}
		})
	}
}

func TestParseImportsRejectsNonObjects(t *testing.T) {
	for _, raw := range []any{nil, "./a.js", []any{"./a.js"}, map[string]any{"#a": "./a.js"}} {
		_, err := ParseImports(raw)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("ParseImports(%v): expected a SchemaError, got %v", raw, err)
		}
	}
	if _, err := ParseImportsJSON([]byte(`["#a"]`)); err == nil {
		t.Fatal("expected an error for an array imports field")
	}
}

func TestParseImportsUnorderedNestedObject(t *testing.T) {
	obj := npm.NewJSONObject([]string{"#a"}, map[string]any{
		"#a": map[string]any{"default": "./a.js"},
	})
	_, err := ParseImports(obj)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) || schemaErr.Path != `imports["#a"]` {
		t.Fatalf("expected a SchemaError at imports[\"#a\"], got %v", err)
	}
}

func TestConditions(t *testing.T) {
	imports := mustParseImports(t, `{
		"#a": {"worker": "./a.js", "browser": {"development": "./a-dev.js", "default": "./a.js"}, "default": "./a.js"},
		"#b": {"development": "./b-dev.js", "node": "./b-node.js", "default": "./b.js"},
		"#c": "./c.js"
	}`)
	conditions, err := Conditions(imports)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(conditions, ","); got != "browser,development,node,worker" {
		t.Fatalf("unexpected conditions: %s", got)
	}

	conditions, err = Conditions(mustParseImports(t, `{"#b": "./b.js", "#c": {"default": "./c.js"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(conditions) != 0 {
		t.Fatalf("expected no conditions, got %v", conditions)
	}
}

func TestBannedConditions(t *testing.T) {
	tests := []struct {
		imports   string
		condition string
	}{
		{`{"#a": {"import": "./a.js", "default": "./b.js"}}`, "import"},
		{`{"#a": {"require": "./a.js", "default": "./b.js"}}`, "require"},
		{`{"#a": {"module": "./a.js", "default": "./b.js"}}`, "module"},
		{`{"#a": {"types": "./a.d.ts", "default": "./b.js"}}`, "types"},
		{`{"#a": {"types@>=5.0": "./a.d.ts", "default": "./b.js"}}`, "types@>=5.0"},
		{`{"#a": {"node": {"import": "./a.mjs", "default": "./a.js"}, "default": "./b.js"}}`, "import"},
	}
	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			_, err := Conditions(mustParseImports(t, tt.imports))
			var bannedErr *BannedConditionError
			if !errors.As(err, &bannedErr) {
				t.Fatalf("expected a BannedConditionError, got %v", err)
			}
			if bannedErr.Condition != tt.condition {
				t.Fatalf("expected condition %s, got %s", tt.condition, bannedErr.Condition)
			}
			want := "condition " + tt.condition + " is not allowed in the imports field with preconstruct"
			if err.Error() != want {
				t.Fatalf("unexpected message: %s", err.Error())
			}
		})
	}

	for _, condition := range []string{"typescript", "typesafe", "node", "development", "react-server"} {
		if IsBannedCondition(condition) {
			t.Fatalf("%s should be allowed", condition)
		}
	}
}

func TestCombinations(t *testing.T) {
	combinations := Combinations([]string{"a", "b", "c"})
	want := "[] [a] [b] [a, b] [c] [a, c] [b, c] [a, b, c]"
	if got := joinCombinations(combinations); got != want {
		t.Fatalf("unexpected combinations:\n got: %s\nwant: %s", got, want)
	}

	empty := Combinations(nil)
	if len(empty) != 1 || len(empty[0]) != 0 || empty[0] == nil {
		t.Fatalf("expected a single empty combination, got %v", empty)
	}

	if n := len(Combinations([]string{"a", "b", "c", "d", "e", "f"})); n != 64 {
		t.Fatalf("expected 64 combinations, got %d", n)
	}
}

func TestCombinationKey(t *testing.T) {
	keys := map[string]string{}
	for _, c := range []Combination{{}, {""}, {"a"}, {"a", "b"}, {"a,b"}, {"1:a"}} {
		key := c.Key()
		if prev, ok := keys[key]; ok {
			t.Fatalf("%s and %s have the same key %q", prev, c.String(), key)
		}
		keys[key] = c.String()
	}
}

func TestResolve(t *testing.T) {
	imports := mustParseImports(t, `{
		"#a": {
			"worker": "./a-worker.js",
			"browser": {"development": "./a-browser-dev.js", "default": "./a-browser.js"},
			"node": {"development": "./a-node-dev.js"},
			"edge-light": null,
			"default": "./a.js"
		}
	}`)
	tree := imports.Entries[0].Tree
	tests := []struct {
		combination Combination
		want        string
	}{
		{Combination{}, "./a.js"},
		{Combination{"worker"}, "./a-worker.js"},
		{Combination{"browser", "worker"}, "./a-worker.js"},
		{Combination{"browser"}, "./a-browser.js"},
		{Combination{"browser", "development"}, "./a-browser-dev.js"},
		{Combination{"development", "node"}, "./a-node-dev.js"},
		// no match in the node branch, falls through to the next branches
		{Combination{"node"}, "./a.js"},
		{Combination{"edge-light"}, "null"},
		{Combination{"edge-light", "node"}, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.combination.String(), func(t *testing.T) {
			leaf, ok := Resolve(tree, tt.combination)
			if !ok {
				t.Fatal("expected a leaf")
			}
			if leaf.String() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, leaf)
			}
		})
	}
}

func TestResolveMissingDefault(t *testing.T) {
	imports := mustParseImports(t, `{"#ok": "./ok.js", "#a": {"node": "./a.js"}}`)
	if _, err := ResolveAll(imports, Combination{"node"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := ResolveAll(imports, Combination{})
	var missingErr *MissingDefaultError
	if !errors.As(err, &missingErr) || missingErr.Specifier != "#a" {
		t.Fatalf("expected a MissingDefaultError for #a, got %v", err)
	}
	if err.Error() != "imports.#a is missing a default" {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	// an empty condition object never resolves
	_, err = ResolveAll(mustParseImports(t, `{"#empty": {}}`), Combination{})
	if !errors.As(err, &missingErr) || missingErr.Specifier != "#empty" {
		t.Fatalf("expected a MissingDefaultError for #empty, got %v", err)
	}
}

func TestIsUserError(t *testing.T) {
	userErrors := []error{
		&SchemaError{Path: "imports", Message: "bad"},
		&BannedConditionError{Condition: "import"},
		&MissingDefaultError{Specifier: "#a"},
		&TooManyConditionsError{Count: 20, Max: 16},
	}
	for _, err := range userErrors {
		if !IsUserError(err) {
			t.Fatalf("%T should be a user error", err)
		}
	}
	if IsUserError(&InternalError{Message: "missing build"}) {
		t.Fatal("InternalError must not be a user error")
	}
	if IsUserError(errors.New("unknown")) {
		t.Fatal("unknown errors must not be user errors")
	}
}
