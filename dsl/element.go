package dsl

import (
	"math"
	"strconv"
	"strings"
)

// Element is a node of a parsed CL document.
type Element interface {
	// Line is the 1-based source line, 0 for elements built in code.
	Line() int
	// Content returns the textual content of the element.
	Content() string
	// ToJSON renders the element as compact JSON.
	ToJSON() string
}

type base struct {
	line   int
	column int
}

func (b base) Line() int { return b.line }

// Number is a numeric literal. Raw keeps the source spelling.
type Number struct {
	base
	Value float64
	Raw   string
}

func (n *Number) Content() string {
	if n.Raw != "" {
		return n.Raw
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *Number) ToJSON() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// String is a quoted literal with escapes already resolved.
type String struct {
	base
	Value string
}

func (s *String) Content() string { return s.Value }
func (s *String) ToJSON() string  { return strconv.Quote(s.Value) }

// Token is a bare identifier such as true, false, null or parent.
type Token struct {
	base
	Value string
}

func (t *Token) Content() string { return t.Value }

func (t *Token) ToJSON() string {
	switch t.Value {
	case "true", "false", "null":
		return t.Value
	}
	return strconv.Quote(t.Value)
}

// Bool reports the boolean value of the token and whether it is one.
func (t *Token) Bool() (value bool, ok bool) {
	switch t.Value {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// IsNull reports whether the token is the null literal.
func (t *Token) IsNull() bool { return t.Value == "null" }

// Key is a named entry of an Object.
type Key struct {
	base
	Name  string
	Value Element
}

func (k *Key) Content() string { return k.Name }

func (k *Key) ToJSON() string {
	if k.Value == nil {
		return strconv.Quote(k.Name) + ":null"
	}
	return strconv.Quote(k.Name) + ":" + k.Value.ToJSON()
}

// Array is an ordered list of elements.
type Array struct {
	base
	Elements []Element
}

func (a *Array) Content() string { return a.ToJSON() }

func (a *Array) ToJSON() string {
	parts := make([]string, 0, len(a.Elements))
	for _, el := range a.Elements {
		parts = append(parts, el.ToJSON())
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elements) }

// Add appends an element.
func (a *Array) Add(el Element) { a.Elements = append(a.Elements, el) }

// At returns the element at index i.
func (a *Array) At(i int) (Element, error) {
	if i < 0 || i >= len(a.Elements) {
		return nil, newParsingError("no element at index "+strconv.Itoa(i), a)
	}
	return a.Elements[i], nil
}

// FloatAt returns the number at index i.
func (a *Array) FloatAt(i int) (float64, error) {
	el, err := a.At(i)
	if err != nil {
		return 0, err
	}
	if n, ok := el.(*Number); ok {
		return n.Value, nil
	}
	return 0, newParsingError("no float at index "+strconv.Itoa(i)+", found "+kindOf(el), a)
}

// FloatAtOrNaN returns the number at index i, or NaN when absent.
func (a *Array) FloatAtOrNaN(i int) float64 {
	f, err := a.FloatAt(i)
	if err != nil {
		return math.NaN()
	}
	return f
}

// StringAt returns the string or token content at index i.
func (a *Array) StringAt(i int) (string, error) {
	el, err := a.At(i)
	if err != nil {
		return "", err
	}
	switch v := el.(type) {
	case *String:
		return v.Value, nil
	case *Token:
		return v.Value, nil
	}
	return "", newParsingError("no string at index "+strconv.Itoa(i)+", found "+kindOf(el), a)
}

// ObjectAt returns the object at index i.
func (a *Array) ObjectAt(i int) (*Object, error) {
	el, err := a.At(i)
	if err != nil {
		return nil, err
	}
	if o, ok := el.(*Object); ok {
		return o, nil
	}
	return nil, newParsingError("no object at index "+strconv.Itoa(i)+", found "+kindOf(el), a)
}

// ArrayAt returns the array at index i.
func (a *Array) ArrayAt(i int) (*Array, error) {
	el, err := a.At(i)
	if err != nil {
		return nil, err
	}
	if arr, ok := el.(*Array); ok {
		return arr, nil
	}
	return nil, newParsingError("no array at index "+strconv.Itoa(i)+", found "+kindOf(el), a)
}

// Object is an ordered set of keys.
type Object struct {
	base
	keys []*Key
}

func (o *Object) Content() string { return o.ToJSON() }

func (o *Object) ToJSON() string {
	parts := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		parts = append(parts, k.ToJSON())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// NewObject returns an empty object, for building documents in code.
func NewObject() *Object { return &Object{} }

// Put adds a key, replacing the value of an existing key with the same name.
func (o *Object) Put(k *Key) {
	for i, existing := range o.keys {
		if existing.Name == k.Name {
			o.keys[i] = k
			return
		}
	}
	o.keys = append(o.keys, k)
}

// Set is a shorthand for Put with a fresh key.
func (o *Object) Set(name string, value Element) { o.Put(&Key{Name: name, Value: value}) }

// Keys returns the entries in declaration order.
func (o *Object) Keys() []*Key { return o.keys }

// Names returns the key names in declaration order.
func (o *Object) Names() []string {
	names := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		names = append(names, k.Name)
	}
	return names
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Has reports whether name is present.
func (o *Object) Has(name string) bool { return o.GetOrNull(name) != nil }

// Get returns the value for name or a *ParsingError when absent.
func (o *Object) Get(name string) (Element, error) {
	if el := o.GetOrNull(name); el != nil {
		return el, nil
	}
	return nil, newParsingError("no element for key <"+name+">", o)
}

// GetOrNull returns the value for name or nil.
func (o *Object) GetOrNull(name string) Element {
	for _, k := range o.keys {
		if k.Name == name {
			return k.Value
		}
	}
	return nil
}

// GetFloat returns the number stored under name.
func (o *Object) GetFloat(name string) (float64, error) {
	el, err := o.Get(name)
	if err != nil {
		return 0, err
	}
	if n, ok := el.(*Number); ok {
		return n.Value, nil
	}
	return 0, newParsingError("no float found for key <"+name+">, found ["+kindOf(el)+"] : "+el.Content(), o)
}

// GetFloatOrNaN returns the number stored under name, or NaN.
func (o *Object) GetFloatOrNaN(name string) float64 {
	if n, ok := o.GetOrNull(name).(*Number); ok {
		return n.Value
	}
	return math.NaN()
}

// GetInt returns the number stored under name truncated to int.
func (o *Object) GetInt(name string) (int, error) {
	f, err := o.GetFloat(name)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// GetString returns the string or token stored under name.
func (o *Object) GetString(name string) (string, error) {
	el, err := o.Get(name)
	if err != nil {
		return "", err
	}
	switch v := el.(type) {
	case *String:
		return v.Value, nil
	case *Token:
		return v.Value, nil
	}
	return "", newParsingError("no string found for key <"+name+">, found ["+kindOf(el)+"] : "+el.Content(), o)
}

// GetStringOrNull returns the string stored under name, or "" when absent or not a string.
func (o *Object) GetStringOrNull(name string) string {
	s, err := o.GetString(name)
	if err != nil {
		return ""
	}
	return s
}

// GetBoolean returns the boolean token stored under name.
func (o *Object) GetBoolean(name string) (bool, error) {
	el, err := o.Get(name)
	if err != nil {
		return false, err
	}
	if t, ok := el.(*Token); ok {
		if b, ok := t.Bool(); ok {
			return b, nil
		}
	}
	return false, newParsingError("no boolean found for key <"+name+">, found ["+kindOf(el)+"] : "+el.Content(), o)
}

// GetBooleanOrDefault returns the boolean stored under name, or def.
func (o *Object) GetBooleanOrDefault(name string, def bool) bool {
	b, err := o.GetBoolean(name)
	if err != nil {
		return def
	}
	return b
}

// GetObject returns the object stored under name.
func (o *Object) GetObject(name string) (*Object, error) {
	el, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	if obj, ok := el.(*Object); ok {
		return obj, nil
	}
	return nil, newParsingError("no object found for key <"+name+">, found ["+kindOf(el)+"] : "+el.Content(), o)
}

// GetObjectOrNull returns the object stored under name, or nil.
func (o *Object) GetObjectOrNull(name string) *Object {
	obj, _ := o.GetOrNull(name).(*Object)
	return obj
}

// GetArray returns the array stored under name.
func (o *Object) GetArray(name string) (*Array, error) {
	el, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	if arr, ok := el.(*Array); ok {
		return arr, nil
	}
	return nil, newParsingError("no array found for key <"+name+">, found ["+kindOf(el)+"] : "+el.Content(), o)
}

// GetArrayOrNull returns the array stored under name, or nil.
func (o *Object) GetArrayOrNull(name string) *Array {
	arr, _ := o.GetOrNull(name).(*Array)
	return arr
}

func kindOf(el Element) string {
	switch el.(type) {
	case *Number:
		return "number"
	case *String:
		return "string"
	case *Token:
		return "token"
	case *Key:
		return "key"
	case *Array:
		return "array"
	case *Object:
		return "object"
	case nil:
		return "nil"
	default:
		return "element"
	}
}
