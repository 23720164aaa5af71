package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	raw := []byte(`<Masterdata><Customer><Name>Acme</Name></Customer></Masterdata>`)

	doc, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "Masterdata", doc.Tree.Root().Tag)

	customer, ok := doc.Flat["Masterdata"].(map[string]interface{})
	require.True(t, ok)
	name := customer["Customer"].(map[string]interface{})["Name"]
	assert.Equal(t, "Acme", name)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`<Masterdata><unclosed>`))
	assert.Error(t, err)
}

func TestCloneFlat_Independent(t *testing.T) {
	doc, err := Decode([]byte(`<Masterdata><Email>x@y.test</Email></Masterdata>`))
	require.NoError(t, err)

	clone := CloneFlat(doc.Flat)

	doc.Flat["Masterdata"].(map[string]interface{})["Email"] = ""

	original := clone["Masterdata"].(map[string]interface{})["Email"]
	assert.Equal(t, "x@y.test", original)
}

func TestTreeXML_RoundTrip(t *testing.T) {
	raw := []byte(`<Masterdata><Name>Acme</Name></Masterdata>`)

	doc, err := Decode(raw)
	require.NoError(t, err)

	out, err := doc.TreeXML()
	require.NoError(t, err)
	assert.Contains(t, out, "<Name>Acme</Name>")
}
