package document

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/clbanning/mxj/v2"
	"github.com/ohler55/ojg/alt"
)

// Document holds the two parallel representations of one ingested masterdata
// payload: the markup tree as received, and the equivalent path-addressable
// flat map. Redaction mutates both in lockstep.
type Document struct {
	Tree *etree.Document
	Flat map[string]interface{}
}

// Decode parses a raw XML payload into both representations.
func Decode(raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty document body")
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	flat, err := mxj.NewMapXml(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten document: %w", err)
	}

	return &Document{
		Tree: tree,
		Flat: map[string]interface{}(flat),
	}, nil
}

// CloneFlat deep-copies a flat document so one copy can be redacted for
// storage while the original travels to the broker intact.
func CloneFlat(flat map[string]interface{}) map[string]interface{} {
	if dup, ok := alt.Dup(flat).(map[string]interface{}); ok {
		return dup
	}
	// alt.Dup always preserves the top-level map shape for map input
	return map[string]interface{}{}
}

// TreeXML serializes the tree representation back to XML.
func (d *Document) TreeXML() (string, error) {
	return d.Tree.WriteToString()
}
