package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	clLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:[eE][-+]?\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
		{Name: "Ident", Pattern: `[A-Za-z_$#][A-Za-z0-9_$#.\-]*`},
		{Name: "Punct", Pattern: `[{}\[\]:,]`},
	})

	documentParser = participle.MustBuild[document](
		participle.Lexer(clLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment"),
	)
)

// document is the grammar root: a single top-level object.
type document struct {
	Root *objectNode `parser:"@@"`
}

type objectNode struct {
	Pos     lexer.Position `parser:""`
	Entries []*entryNode   `parser:"'{' ( @@ ','? )* '}'"`
}

type entryNode struct {
	Pos   lexer.Position `parser:""`
	Key   keyName        `parser:"@( Ident | String | Number )"`
	Value *valueNode     `parser:"':' @@"`
}

type valueNode struct {
	Pos    lexer.Position `parser:""`
	Object *objectNode    `parser:"  @@"`
	Array  *arrayNode     `parser:"| @@"`
	String *quoted        `parser:"| @String"`
	Number *string        `parser:"| @Number"`
	Token  *string        `parser:"| @Ident"`
}

type arrayNode struct {
	Pos    lexer.Position `parser:""`
	Values []*valueNode   `parser:"'[' ( @@ ','? )* ']'"`
}

// quoted unquotes single- or double-quoted strings on capture.
type quoted string

// Capture implements participle.Capture.
func (q *quoted) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := unquote(values[0])
	if err != nil {
		return err
	}
	*q = quoted(val)
	return nil
}

// keyName accepts bare identifiers, numbers and quoted strings as object keys.
type keyName string

// Capture implements participle.Capture.
func (k *keyName) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("key capture requires value")
	}
	val, err := unquote(values[0])
	if err != nil {
		return err
	}
	*k = keyName(val)
	return nil
}

// Parse parses CL content from an io.Reader.
func Parse(r io.Reader) (*Object, error) {
	doc, err := documentParser.Parse("", r)
	if err != nil {
		return nil, err
	}
	return convertObject(doc.Root)
}

// ParseString parses CL content from a string.
func ParseString(input string) (*Object, error) {
	doc, err := documentParser.ParseString("", input)
	if err != nil {
		return nil, err
	}
	return convertObject(doc.Root)
}

func convertObject(n *objectNode) (*Object, error) {
	obj := &Object{base: baseAt(n.Pos)}
	for _, e := range n.Entries {
		v, err := convertValue(e.Value)
		if err != nil {
			return nil, err
		}
		obj.Put(&Key{base: baseAt(e.Pos), Name: string(e.Key), Value: v})
	}
	return obj, nil
}

func convertValue(n *valueNode) (Element, error) {
	switch {
	case n == nil:
		return nil, fmt.Errorf("missing value")
	case n.Object != nil:
		return convertObject(n.Object)
	case n.Array != nil:
		arr := &Array{base: baseAt(n.Array.Pos)}
		for _, v := range n.Array.Values {
			el, err := convertValue(v)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, el)
		}
		return arr, nil
	case n.String != nil:
		return &String{base: baseAt(n.Pos), Value: string(*n.String)}, nil
	case n.Number != nil:
		f, err := strconv.ParseFloat(*n.Number, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q: %w", n.Pos, *n.Number, err)
		}
		return &Number{base: baseAt(n.Pos), Value: f, Raw: *n.Number}, nil
	case n.Token != nil:
		return &Token{base: baseAt(n.Pos), Value: *n.Token}, nil
	default:
		return nil, fmt.Errorf("%s: empty value", n.Pos)
	}
}

func baseAt(pos lexer.Position) base {
	return base{line: pos.Line, column: pos.Column}
}

func unquote(raw string) (string, error) {
	if len(raw) < 2 {
		return raw, nil
	}
	q := raw[0]
	if (q != '"' && q != '\'') || raw[len(raw)-1] != q {
		return raw, nil
	}
	body := raw[1 : len(raw)-1]
	if q == '\'' {
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `"`, `\"`)
	}
	return strconv.Unquote(`"` + body + `"`)
}
