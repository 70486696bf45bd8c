package docbench

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJsonDocumentSetAndGet(t *testing.T) {
	doc := NewJsonDocument("doc-1")
	doc.Set("name", "alice")
	doc.Set("age", int64(30))

	v, ok := doc.Get("name")
	require.True(t, ok)
	require.Equal(t, "alice", v)
	require.Equal(t, []string{"name", "age"}, doc.Keys())
}

func TestJsonDocumentEnsureID(t *testing.T) {
	doc := NewJsonDocument("doc-2")
	doc.Set("field1", "x")
	doc = doc.ensureID()

	v, ok := doc.Get("_id")
	require.True(t, ok)
	require.Equal(t, "doc-2", v)
}

func TestJsonDocumentEnsureIDDoesNotOverwriteExplicitID(t *testing.T) {
	doc := NewJsonDocument("doc-3")
	doc.Set("_id", "custom-id")
	doc = doc.ensureID()

	v, _ := doc.Get("_id")
	require.Equal(t, "custom-id", v)
}

func TestJsonDocumentGetPathNested(t *testing.T) {
	doc := NewJsonDocument("doc-4")
	require.NoError(t, doc.SetPath("customer.name", "bob"))
	require.NoError(t, doc.SetPath("customer.addresses[1].zip", "94110"))

	v, ok := doc.GetPath("customer.name")
	require.True(t, ok)
	require.Equal(t, "bob", v)

	v, ok = doc.GetPath("customer.addresses[1].zip")
	require.True(t, ok)
	require.Equal(t, "94110", v)

	_, ok = doc.GetPath("customer.addresses[0].zip")
	require.False(t, ok)
}

func TestJsonDocumentGetPathBrokenLinkReturnsAbsent(t *testing.T) {
	doc := NewJsonDocument("doc-5")
	doc.Set("name", "carol")

	_, ok := doc.GetPath("name.nonexistent")
	require.False(t, ok)

	_, ok = doc.GetPath("does.not.exist")
	require.False(t, ok)
}

func TestJsonDocumentMalformedBracketTreatedAsLiteralField(t *testing.T) {
	doc := NewJsonDocument("doc-6")
	doc.Set("weird[", "value")

	v, ok := doc.GetPath("weird[")
	require.True(t, ok)
	require.Equal(t, "value", v)
}

func TestJsonDocumentProjectSubsetOfFields(t *testing.T) {
	doc := NewJsonDocument("doc-7")
	doc.Set("a", 1)
	doc.Set("b", 2)
	doc.Set("c", 3)

	projected := doc.Project([]ProjectionPath{"a", "c"})
	_, hasA := projected.Get("a")
	_, hasB := projected.Get("b")
	_, hasC := projected.Get("c")

	require.True(t, hasA)
	require.False(t, hasB)
	require.True(t, hasC)
}

func TestJsonDocumentProjectEmptyReturnsFullDocument(t *testing.T) {
	doc := NewJsonDocument("doc-8")
	doc.Set("a", 1)

	projected := doc.Project(nil)
	require.Equal(t, doc.Keys(), projected.Keys())
}

func TestJsonDocumentContentDeepCopy(t *testing.T) {
	doc := NewJsonDocument("doc-9")
	doc.Set("nested", map[string]interface{}{"inner": "v"})

	content := doc.Content()
	content["nested"].(map[string]interface{})["inner"] = "mutated"

	v, _ := doc.GetPath("nested.inner")
	require.Equal(t, "v", v)
}
