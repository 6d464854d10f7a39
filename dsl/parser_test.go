package dsl_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/constraintkit/dsl"
)

const sampleCL = `
{
  // widgets
  title: {
    width: 'wrap',
    height: 48,
    start: ['parent', 'start', 16],
    top: ["parent", "top", 8, 4],
    visibility: gone,
    baseline: null,
  }
  "quoted key": { alpha: .5, scale: -2e1 }
  /* helpers */
  chain: {
    type: 'hChain',
    contains: ['a', 'b', ['c', 2, 8, 8]]
    style: packed
  }
  flags: { enabled: true, custom: false }
}
`

func TestParseDocument(t *testing.T) {
	root, err := dsl.ParseString(sampleCL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := root.Names(); strings.Join(got, ",") != "title,quoted key,chain,flags" {
		t.Fatalf("unexpected keys: %v", got)
	}

	title, err := root.GetObject("title")
	if err != nil {
		t.Fatalf("title: %v", err)
	}
	if w, _ := title.GetString("width"); w != "wrap" {
		t.Fatalf("expected width wrap, got %q", w)
	}
	if h, _ := title.GetFloat("height"); h != 48 {
		t.Fatalf("expected height 48, got %g", h)
	}
	start, err := title.GetArray("start")
	if err != nil || start.Len() != 3 {
		t.Fatalf("start array missing: %v", err)
	}
	if m, _ := start.FloatAt(2); m != 16 {
		t.Fatalf("expected start margin 16, got %g", m)
	}
	top := title.GetArrayOrNull("top")
	if top == nil || top.FloatAtOrNaN(3) != 4 {
		t.Fatalf("expected gone margin 4 in %v", top)
	}
	if v, _ := title.GetString("visibility"); v != "gone" {
		t.Fatalf("expected bare token gone, got %q", v)
	}
	if tok, ok := title.GetOrNull("baseline").(*dsl.Token); !ok || !tok.IsNull() {
		t.Fatalf("expected null token for baseline")
	}

	q := root.GetObjectOrNull("quoted key")
	if q == nil {
		t.Fatalf("quoted key missing")
	}
	if a := q.GetFloatOrNaN("alpha"); a != 0.5 {
		t.Fatalf("expected alpha .5, got %g", a)
	}
	if s := q.GetFloatOrNaN("scale"); s != -20 {
		t.Fatalf("expected scale -20, got %g", s)
	}

	chain, _ := root.GetObject("chain")
	contains, _ := chain.GetArray("contains")
	nested, err := contains.ArrayAt(2)
	if err != nil {
		t.Fatalf("nested array: %v", err)
	}
	if id, _ := nested.StringAt(0); id != "c" {
		t.Fatalf("expected c, got %q", id)
	}

	flags, _ := root.GetObject("flags")
	if b, err := flags.GetBoolean("enabled"); err != nil || !b {
		t.Fatalf("expected enabled=true, got %v %v", b, err)
	}
	if flags.GetBooleanOrDefault("custom", true) {
		t.Fatalf("expected custom=false")
	}
	if !flags.GetBooleanOrDefault("missing", true) {
		t.Fatalf("default should be used for missing key")
	}
}

func TestMissingKeyReturnsParsingError(t *testing.T) {
	root, err := dsl.ParseString(`{ a: 1 }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = root.GetFloat("b")
	var perr *dsl.ParsingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParsingError, got %T", err)
	}
	if perr.Element != root {
		t.Fatalf("error should carry the container that was searched")
	}
	if !math.IsNaN(root.GetFloatOrNaN("b")) {
		t.Fatalf("OrNaN variant should not fail")
	}
	if root.GetStringOrNull("b") != "" {
		t.Fatalf("OrNull variant should return empty string")
	}

	if _, err := root.GetString("a"); err == nil {
		t.Fatalf("number is not a string")
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{`{ a: }`, `{ a 1 }`, `[1, 2]`, `{ a: [1, 2 }`} {
		if _, err := dsl.ParseString(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestToJSON(t *testing.T) {
	root, err := dsl.ParseString(`{ a: 'x', b: [1, 2.5, true], c: { d: null, e: parent } }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := `{"a":"x","b":[1,2.5,true],"c":{"d":null,"e":"parent"}}`
	if got := root.ToJSON(); got != want {
		t.Fatalf("ToJSON mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestPutReplacesExistingKey(t *testing.T) {
	obj := dsl.NewObject()
	obj.Set("k", &dsl.Number{Value: 1})
	obj.Set("k", &dsl.Number{Value: 2})
	if obj.Len() != 1 {
		t.Fatalf("expected one key, got %d", obj.Len())
	}
	if v, _ := obj.GetFloat("k"); v != 2 {
		t.Fatalf("expected replaced value 2, got %g", v)
	}
}
