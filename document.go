package docbench

import "fmt"

// orderedObject is an insertion-ordered string-keyed mapping. DocBench
// needs an explicit ordered-map type, rather than a plain Go map,
// because the benchmark's thesis depends on field position influencing
// scan-based traversal cost (§3) — the same motivation that led the
// teacher to its own ordered bsonx.Document (bsonx/x_document.go),
// reimplemented here over plain slices rather than the BSON wire
// model, since DocBench's document values are domain-agnostic JSON,
// not BSON.
type orderedObject struct {
	keys []string
	vals map[string]interface{}
}

func newOrderedObject() *orderedObject {
	return &orderedObject{vals: make(map[string]interface{})}
}

func (o *orderedObject) set(key string, val interface{}) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = val
}

func (o *orderedObject) get(key string) (interface{}, bool) {
	v, ok := o.vals[key]
	return v, ok
}

func (o *orderedObject) clone() *orderedObject {
	out := &orderedObject{
		keys: append([]string(nil), o.keys...),
		vals: make(map[string]interface{}, len(o.vals)),
	}
	for k, v := range o.vals {
		out.vals[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *orderedObject:
		return t.clone()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// JsonDocument is an ordered mapping from string keys to values, drawn
// from null, boolean, integer, floating-point, string, ordered
// sequence, or nested mapping. It carries an identifier distinct from
// its content; if the builder did not set an "_id" field explicitly,
// one is inserted automatically holding the same value as ID.
type JsonDocument struct {
	ID      string
	content *orderedObject
}

// NewJsonDocument builds an empty document carrying id. If content
// does not already define "_id" when the document is later finalized
// by ensureID (as DocumentGenerator.Generate does), "_id" is inserted
// holding id.
func NewJsonDocument(id string) JsonDocument {
	return JsonDocument{ID: id, content: newOrderedObject()}
}

// Set inserts or overwrites a top-level field, preserving the existing
// position if the key is already present, else appending it.
func (d JsonDocument) Set(key string, value interface{}) {
	d.content.set(key, value)
}

// ensureID inserts "_id" = ID if no such key exists yet. Idempotent.
func (d JsonDocument) ensureID() JsonDocument {
	if _, ok := d.content.get("_id"); !ok {
		d.content.set("_id", d.ID)
	}
	return d
}

// Keys returns the top-level field names in insertion order.
func (d JsonDocument) Keys() []string {
	return append([]string(nil), d.content.keys...)
}

// Get returns a top-level field's value. Nested objects are returned
// as map[string]interface{} copies, the same form Content uses.
func (d JsonDocument) Get(key string) (interface{}, bool) {
	v, ok := d.content.get(key)
	if !ok {
		return nil, false
	}
	return exportValue(v), true
}

// Content returns a deep copy of the document as a map, recursively
// converting nested ordered objects to map[string]interface{}. Field
// order is not observable on the returned value; use Keys for that.
func (d JsonDocument) Content() map[string]interface{} {
	return exportObject(d.content)
}

func exportObject(o *orderedObject) map[string]interface{} {
	out := make(map[string]interface{}, len(o.keys))
	for _, k := range o.keys {
		v, _ := o.get(k)
		out[k] = exportValue(v)
	}
	return out
}

func exportValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *orderedObject:
		return exportObject(t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = exportValue(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = exportValue(e)
		}
		return out
	default:
		return v
	}
}

// HasPath reports whether GetPath would resolve the given path.
func (d JsonDocument) HasPath(path string) bool {
	_, ok := d.GetPath(path)
	return ok
}

// GetPath resolves a dotted/indexed path against the document,
// returning (nil, false) on any broken link. A traversed node may be
// either an *orderedObject (a field set via Set on a JsonDocument) or
// an already-exported map[string]interface{} (a field set from
// Content() of a sub-document, as the generator's nested/array
// builders do); both resolve fields by name identically.
func (d JsonDocument) GetPath(path string) (interface{}, bool) {
	segments := parsePath(path)
	var cur interface{} = d.content
	for _, seg := range segments {
		v, ok := lookupField(cur, seg.field)
		if !ok {
			return nil, false
		}
		cur = v
		if seg.hasIndex {
			arr, ok := cur.([]interface{})
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.index]
		}
	}
	return exportValue(cur), true
}

func lookupField(node interface{}, field string) (interface{}, bool) {
	switch t := node.(type) {
	case *orderedObject:
		return t.get(field)
	case map[string]interface{}:
		v, ok := t[field]
		return v, ok
	default:
		return nil, false
	}
}

// SetPath sets the value at a dotted/indexed path, auto-creating
// intermediate objects and extending arrays with nil elements as
// needed.
func (d JsonDocument) SetPath(path string, value interface{}) error {
	segments := parsePath(path)
	if len(segments) == 0 {
		return fmt.Errorf("empty path")
	}
	return setPathRecursive(d.content, segments, value)
}

// asObject returns v as an *orderedObject, converting a plain
// map[string]interface{} (as produced by Content()) in place rather
// than discarding its fields; field order within a converted map is
// unspecified, since a plain Go map carries none.
func asObject(v interface{}) (*orderedObject, bool) {
	switch t := v.(type) {
	case *orderedObject:
		return t, true
	case map[string]interface{}:
		out := newOrderedObject()
		for k, val := range t {
			out.set(k, val)
		}
		return out, true
	default:
		return nil, false
	}
}

func setPathRecursive(obj *orderedObject, segments []pathSegment, value interface{}) error {
	seg := segments[0]
	last := len(segments) == 1

	if !seg.hasIndex {
		if last {
			obj.set(seg.field, value)
			return nil
		}
		child, _ := obj.get(seg.field)
		childObj, isObj := asObject(child)
		if !isObj {
			childObj = newOrderedObject()
		}
		obj.set(seg.field, childObj)
		return setPathRecursive(childObj, segments[1:], value)
	}

	child, ok := obj.get(seg.field)
	arr, isArr := child.([]interface{})
	if !ok || !isArr {
		arr = nil
	}
	for len(arr) <= seg.index {
		arr = append(arr, nil)
	}
	if last {
		arr[seg.index] = value
		obj.set(seg.field, arr)
		return nil
	}
	elemObj, isObj := asObject(arr[seg.index])
	if !isObj {
		elemObj = newOrderedObject()
	}
	arr[seg.index] = elemObj
	obj.set(seg.field, arr)
	return setPathRecursive(elemObj, segments[1:], value)
}

// Project returns a new document holding only the fields named by
// paths, set in the order paths lists them (a dotted path recreates its
// nested structure), or the full document if paths is empty. Missing
// paths are simply absent from the result.
func (d JsonDocument) Project(paths []ProjectionPath) JsonDocument {
	if len(paths) == 0 {
		return d
	}
	out := NewJsonDocument(d.ID)
	for _, p := range paths {
		if v, ok := d.GetPath(string(p)); ok {
			_ = out.SetPath(string(p), v)
		}
	}
	return out
}
