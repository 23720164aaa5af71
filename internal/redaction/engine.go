package redaction

import (
	"context"
	"fmt"
	"sort"

	"github.com/beevik/etree"
	"github.com/gobwas/glob"
	"github.com/ohler55/ojg/jp"

	"mdhub/internal/logger"
	"mdhub/pkg/errors"
	"mdhub/pkg/metrics"
	"mdhub/pkg/tracing"
)

// Engine evaluates an organization's privacy rules against one ingested
// document, blanking matched values in the flat representation and removing
// the corresponding nodes from the tree representation. Both mutations happen
// in place; callers clone beforehand if they need the original.
type Engine struct {
	source Source
	logger logger.Logger
}

func NewEngine(source Source, log logger.Logger) *Engine {
	return &Engine{
		source: source,
		logger: log,
	}
}

// Redact fetches the rules for the organization and document kind and applies
// them. A rule fetch failure aborts with a typed error and is never retried
// here; rules that parse badly or select nothing are a no-op. Re-applying
// rules to an already-redacted document is also a no-op.
func (e *Engine) Redact(ctx context.Context, flat map[string]interface{}, tree *etree.Document, organizationID, documentKind string) error {
	ctx, span := tracing.GetTracer("hub-service").Start(ctx, "redaction.redact")
	defer span.End()

	rules, err := e.source.Rules(ctx, organizationID, documentKind)
	if err != nil {
		return errors.Wrap(err, errors.ErrRuleFetch)
	}

	metrics.RedactionRulesFetched.Observe(float64(len(rules)))

	sort.SliceStable(rules, func(i, j int) bool {
		return priorityOf(rules[i]) < priorityOf(rules[j])
	})

	for _, rule := range rules {
		e.apply(ctx, rule, flat, tree, organizationID)
	}

	return nil
}

func priorityOf(r Rule) int {
	if r.Priority <= 0 {
		return 1
	}
	return r.Priority
}

func (e *Engine) apply(ctx context.Context, rule Rule, flat map[string]interface{}, tree *etree.Document, organizationID string) {
	expr, err := jp.ParseString(rule.Path)
	if err != nil {
		e.logger.WarnwCtx(ctx, "Skipping rule with unparsable path",
			"path", rule.Path,
			"error", err,
		)
		return
	}

	locations := expr.Locate(flat, 0)
	if len(locations) == 0 {
		return
	}

	if !e.matchesAny(ctx, rule, expr, flat) {
		return
	}

	if rule.CanStore {
		return
	}

	blanked := 0
	for _, loc := range locations {
		current := loc.First(flat)

		var empty interface{}
		switch current.(type) {
		case []interface{}:
			empty = []interface{}{}
		default:
			empty = ""
		}

		if err := loc.Set(flat, empty); err != nil {
			e.logger.WarnwCtx(ctx, "Failed to blank flat document node",
				"path", rule.Path,
				"error", err,
			)
			continue
		}
		blanked++
	}

	e.removeTreeNodes(ctx, rule, tree)

	metrics.RedactionsTotal.WithLabelValues(organizationID).Add(float64(blanked))
	e.logger.DebugwCtx(ctx, "Redacted field",
		"path", rule.Path,
		"nodes", blanked,
	)
}

// matchesAny runs the rule's wildcard-glob predicate over every value the
// path selects. An already-blanked value still matches "*", which keeps
// repeated redaction idempotent.
func (e *Engine) matchesAny(ctx context.Context, rule Rule, expr jp.Expr, flat map[string]interface{}) bool {
	pattern := rule.Match
	if pattern == "" {
		pattern = "*"
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		e.logger.WarnwCtx(ctx, "Skipping rule with invalid match pattern",
			"pattern", pattern,
			"error", err,
		)
		return false
	}

	for _, value := range expr.Get(flat) {
		if matchValue(g, value) {
			return true
		}
	}
	return false
}

func matchValue(g glob.Glob, value interface{}) bool {
	switch v := value.(type) {
	case string:
		return g.Match(v)
	case []interface{}:
		for _, item := range v {
			if matchValue(g, item) {
				return true
			}
		}
		return false
	case nil:
		return false
	default:
		return g.Match(fmt.Sprint(v))
	}
}

// removeTreeNodes deletes every tree node at the rule's explicit xpath, or at
// the derived path when no explicit one is set. Unlike the flat document the
// tree node is removed entirely, not blanked; removing an already-removed
// node is a no-op.
func (e *Engine) removeTreeNodes(ctx context.Context, rule Rule, tree *etree.Document) {
	xpath := rule.XPath
	if xpath == "" {
		xpath = ToXMLPath(rule.Path)
	}

	compiled, err := etree.CompilePath(xpath)
	if err != nil {
		e.logger.WarnwCtx(ctx, "Skipping tree removal for uncompilable path",
			"xpath", xpath,
			"error", err,
		)
		return
	}

	for _, el := range tree.FindElementsPath(compiled) {
		if parent := el.Parent(); parent != nil {
			parent.RemoveChild(el)
		}
	}
}
