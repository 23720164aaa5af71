package redaction

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdhub/internal/document"
	"mdhub/internal/logger"
	"mdhub/pkg/errors"
)

const sampleXML = `<Masterdata>
	<Customer>
		<Name>Acme Industrial</Name>
		<Email>ceo@acme.test</Email>
	</Customer>
	<Notes>
		<Note>confidential remark</Note>
		<Note>second remark</Note>
	</Notes>
</Masterdata>`

type stubSource struct {
	rules []Rule
	err   error
	calls int
}

func (s *stubSource) Rules(ctx context.Context, organizationID, documentKind string) ([]Rule, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rules, nil
}

func decodeSample(t *testing.T) *document.Document {
	t.Helper()
	doc, err := document.Decode([]byte(sampleXML))
	require.NoError(t, err)
	return doc
}

func flatValue(t *testing.T, flat map[string]interface{}, keys ...string) interface{} {
	t.Helper()
	var current interface{} = flat
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		require.True(t, ok, "expected map at %q", key)
		current = m[key]
	}
	return current
}

func TestEngine_Redact_BlanksFlatAndRemovesTreeNode(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{rules: []Rule{
		{Path: "$.Masterdata.Customer.Email", CanStore: false},
	}}
	engine := NewEngine(source, logger.NopLogger())

	err := engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata")
	require.NoError(t, err)

	assert.Equal(t, "", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
	assert.Equal(t, "Acme Industrial", flatValue(t, doc.Flat, "Masterdata", "Customer", "Name"))

	assert.Empty(t, doc.Tree.FindElements("/Masterdata/Customer/Email"))
	assert.Len(t, doc.Tree.FindElements("/Masterdata/Customer/Name"), 1)
}

func TestEngine_Redact_SequenceBecomesEmptySlice(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{rules: []Rule{
		{Path: "$.Masterdata.Notes.Note", CanStore: false},
	}}
	engine := NewEngine(source, logger.NopLogger())

	err := engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata")
	require.NoError(t, err)

	notes := flatValue(t, doc.Flat, "Masterdata", "Notes", "Note")
	assert.Equal(t, []interface{}{}, notes)

	assert.Empty(t, doc.Tree.FindElements("/Masterdata/Notes/Note"))
	assert.Len(t, doc.Tree.FindElements("/Masterdata/Notes"), 1)
}

func TestEngine_Redact_CanStoreLeavesDocumentUntouched(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{rules: []Rule{
		{Path: "$.Masterdata.Customer.Email", CanStore: true},
	}}
	engine := NewEngine(source, logger.NopLogger())

	err := engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata")
	require.NoError(t, err)

	assert.Equal(t, "ceo@acme.test", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
	assert.Len(t, doc.Tree.FindElements("/Masterdata/Customer/Email"), 1)
}

func TestEngine_Redact_MatchPredicate(t *testing.T) {
	t.Run("matching pattern redacts", func(t *testing.T) {
		doc := decodeSample(t)
		source := &stubSource{rules: []Rule{
			{Path: "$.Masterdata.Customer.Email", Match: "*@acme.test"},
		}}
		engine := NewEngine(source, logger.NopLogger())

		require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))
		assert.Equal(t, "", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
	})

	t.Run("non-matching pattern is a no-op", func(t *testing.T) {
		doc := decodeSample(t)
		source := &stubSource{rules: []Rule{
			{Path: "$.Masterdata.Customer.Email", Match: "*@other.test"},
		}}
		engine := NewEngine(source, logger.NopLogger())

		require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))
		assert.Equal(t, "ceo@acme.test", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
		assert.Len(t, doc.Tree.FindElements("/Masterdata/Customer/Email"), 1)
	})
}

func TestEngine_Redact_Idempotent(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{rules: []Rule{
		{Path: "$.Masterdata.Customer.Email"},
		{Path: "$.Masterdata.Notes.Note"},
	}}
	engine := NewEngine(source, logger.NopLogger())

	require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))

	firstXML, err := doc.TreeXML()
	require.NoError(t, err)

	require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))

	secondXML, err := doc.TreeXML()
	require.NoError(t, err)

	assert.Equal(t, firstXML, secondXML)
	assert.Equal(t, "", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
	assert.Equal(t, []interface{}{}, flatValue(t, doc.Flat, "Masterdata", "Notes", "Note"))
}

func TestEngine_Redact_UnparsablePathIsSkipped(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{rules: []Rule{
		{Path: "$[?(broken"},
		{Path: "$.Masterdata.Customer.Email"},
	}}
	engine := NewEngine(source, logger.NopLogger())

	require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))
	assert.Equal(t, "", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
}

func TestEngine_Redact_NonSelectingPathIsNoOp(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{rules: []Rule{
		{Path: "$.Masterdata.DoesNotExist"},
	}}
	engine := NewEngine(source, logger.NopLogger())

	before, err := doc.TreeXML()
	require.NoError(t, err)

	require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))

	after, err := doc.TreeXML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEngine_Redact_EmptyRuleListLeavesDocumentUnchanged(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{}
	engine := NewEngine(source, logger.NopLogger())

	require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))
	assert.Equal(t, "ceo@acme.test", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
}

func TestEngine_Redact_SourceFailureAborts(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{err: fmt.Errorf("rule service down")}
	engine := NewEngine(source, logger.NopLogger())

	err := engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRuleFetch))

	// nothing mutated on failure
	assert.Equal(t, "ceo@acme.test", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
}

func TestEngine_Redact_ExplicitXPathWins(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{rules: []Rule{
		{Path: "$.Masterdata.Customer.Email", XPath: "/Masterdata/Notes"},
	}}
	engine := NewEngine(source, logger.NopLogger())

	require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))

	// the flat path still drives blanking, the explicit xpath drives removal
	assert.Equal(t, "", flatValue(t, doc.Flat, "Masterdata", "Customer", "Email"))
	assert.Empty(t, doc.Tree.FindElements("/Masterdata/Notes"))
	assert.Len(t, doc.Tree.FindElements("/Masterdata/Customer/Email"), 1)
}

func TestEngine_Redact_RulesFetchedFreshPerCall(t *testing.T) {
	doc := decodeSample(t)
	source := &stubSource{}
	engine := NewEngine(source, logger.NopLogger())

	require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))
	require.NoError(t, engine.Redact(context.Background(), doc.Flat, doc.Tree, "org-1", "masterdata"))

	assert.Equal(t, 2, source.calls)
}
