// Package pipeline implements component F: the per-descriptor pure
// pipeline stages (profile activation, parent lineage traversal,
// inheritance assembly, interpolation, dependency-management import
// selection, enablement) that internal/graphbuilder drives recursively.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// maxInterpolationPasses bounds the fixed-point expansion: expressions
// may reference other properties that are themselves expressions, so a
// single pass is not always enough. A run that still has unresolved
// expressions after this many passes is treated as a property cycle.
const maxInterpolationPasses = 10

// PropertyStack is the layered property source an interpolation pass
// evaluates expressions against: descriptor properties < system
// properties < user properties, per spec.md §4.F. Later layers win on
// key conflicts.
type PropertyStack struct {
	Descriptor map[string]hcl.Expression
	System     map[string]string
	User       map[string]string
}

// Interpolate resolves every ${expr} reference in props.Descriptor to a
// cty.Value, iterating to a fixed point so properties that reference
// other properties resolve correctly regardless of declaration order.
// Expressions that still fail to resolve after maxInterpolationPasses are
// reported as an ERROR diagnostic (property cycle or genuinely missing
// reference — indistinguishable without deeper AST analysis, matching
// the original's flat failure mode).
func Interpolate(props PropertyStack) (map[string]cty.Value, []diagnostic.Diagnostic) {
	resolved := make(map[string]cty.Value, len(props.Descriptor))
	for k, v := range props.System {
		resolved[k] = cty.StringVal(v)
	}
	for k, v := range props.User {
		resolved[k] = cty.StringVal(v)
	}

	pending := make(map[string]hcl.Expression, len(props.Descriptor))
	for k, v := range props.Descriptor {
		if _, overridden := resolved[k]; !overridden {
			pending[k] = v
		}
	}

	var lastDiags hcl.Diagnostics
	for pass := 0; pass < maxInterpolationPasses && len(pending) > 0; pass++ {
		evalCtx := evalContextFor(resolved)
		progressed := false
		lastDiags = nil
		for k, expr := range pending {
			val, diags := expr.Value(evalCtx)
			if diags.HasErrors() {
				lastDiags = append(lastDiags, diags...)
				continue
			}
			resolved[k] = val
			delete(pending, k)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	var out []diagnostic.Diagnostic
	if len(pending) > 0 {
		keys := make([]string, 0, len(pending))
		for k := range pending {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Message:  fmt.Sprintf("failed to interpolate properties (cycle or unresolved reference): %s", strings.Join(keys, ", ")),
		}
		if lastDiags.HasErrors() {
			d.Cause = lastDiags
		}
		out = append(out, d)
	}
	return resolved, out
}

// literalString extracts a plain string value from an HCL expression
// without resolving any variable references, for use by activation
// predicates that run before the property stack has been interpolated.
// An expression that references variables, or evaluates to a non-string,
// is treated as "not a literal" rather than an error: activation simply
// won't see that property.
//
// isExprDefined mirrors the common HCL-decoder idiom of checking the
// expression's byte range to distinguish a genuinely authored value from
// a zero-width placeholder the parser inserts for an omitted attribute.
func literalString(v hcl.Expression) (string, bool) {
	if v == nil || !isExprDefined(v) {
		return "", false
	}
	val, diags := v.Value(nil)
	if diags.HasErrors() || val.IsNull() || !val.IsKnown() || val.Type() != cty.String {
		return "", false
	}
	return val.AsString(), true
}

func isExprDefined(expr hcl.Expression) bool {
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// parseTemplate parses a raw string field (e.g. a dependency version, a
// URL) as an HCL template expression, so ${expr} references embedded in
// otherwise-literal text are recognized the same way hclsyntax parses
// them inside an HCL configuration file. Descriptor fields that contain
// no ${...} reference parse as a single literal template part and
// round-trip unchanged.
func parseTemplate(raw string, filename string) (hcl.Expression, hcl.Diagnostics) {
	return hclsyntax.ParseTemplate([]byte(raw), filename, hcl.InitialPos)
}

// InterpolateString expands ${expr} references embedded in a single raw
// string field (a version, a URL, a scope — any plain-string descriptor
// field) against an already-resolved property stack. Fields with no
// ${...} reference are returned unchanged. No pipeline stage calls it:
// Interpolate resolves only the property stack, and the dependency,
// plugin and repository string fields of a descriptor are carried
// through to the effective descriptor as written.
func InterpolateString(raw string, sourceFile string, resolved map[string]cty.Value) (string, []diagnostic.Diagnostic) {
	if !strings.Contains(raw, "${") {
		return raw, nil
	}
	expr, parseDiags := parseTemplate(raw, sourceFile)
	if parseDiags.HasErrors() {
		return raw, []diagnostic.Diagnostic{{
			Severity: diagnostic.Error,
			Message:  fmt.Sprintf("invalid expression %q: %s", raw, parseDiags.Error()),
			Source:   sourceFile,
			Cause:    parseDiags,
		}}
	}
	val, evalDiags := expr.Value(evalContextFor(resolved))
	if evalDiags.HasErrors() {
		return raw, []diagnostic.Diagnostic{{
			Severity: diagnostic.Error,
			Message:  fmt.Sprintf("failed to interpolate %q: %s", raw, evalDiags.Error()),
			Source:   sourceFile,
			Cause:    evalDiags,
		}}
	}
	if val.IsNull() || !val.IsKnown() {
		return raw, nil
	}
	if val.Type() != cty.String {
		return fmt.Sprintf("%#v", val), nil
	}
	return val.AsString(), nil
}

// evalContextFor builds an *hcl.EvalContext exposing the resolved
// property stack as a namespaced variable tree: a flat key like
// "project.version" becomes accessible as the traversal
// project.version, by splitting on '.' and nesting cty objects one level
// per segment — the same namespacing idiom HCL-based configuration
// languages use for scoped variables.
func evalContextFor(properties map[string]cty.Value) *hcl.EvalContext {
	root := newNamespaceBuilder()
	for k, v := range properties {
		root.set(strings.Split(k, "."), v)
	}
	return &hcl.EvalContext{Variables: root.build()}
}

// namespaceBuilder incrementally assembles a tree of cty object values
// from dotted property keys.
type namespaceBuilder struct {
	leaf     *cty.Value
	children map[string]*namespaceBuilder
}

func newNamespaceBuilder() *namespaceBuilder {
	return &namespaceBuilder{children: make(map[string]*namespaceBuilder)}
}

func (n *namespaceBuilder) set(segments []string, v cty.Value) {
	if len(segments) == 1 {
		child, ok := n.children[segments[0]]
		if !ok {
			child = newNamespaceBuilder()
			n.children[segments[0]] = child
		}
		val := v
		child.leaf = &val
		return
	}
	child, ok := n.children[segments[0]]
	if !ok {
		child = newNamespaceBuilder()
		n.children[segments[0]] = child
	}
	child.set(segments[1:], v)
}

func (n *namespaceBuilder) build() map[string]cty.Value {
	out := make(map[string]cty.Value, len(n.children))
	for name, child := range n.children {
		out[name] = child.value()
	}
	return out
}

func (n *namespaceBuilder) value() cty.Value {
	if len(n.children) == 0 {
		if n.leaf != nil {
			return *n.leaf
		}
		return cty.NilVal
	}
	obj := make(map[string]cty.Value, len(n.children)+1)
	for name, child := range n.children {
		obj[name] = child.value()
	}
	if n.leaf != nil {
		// a property exists at both this level and as a nested namespace
		// (e.g. both "project" and "project.version" are defined); the
		// leaf value is exposed as a synthetic "_value" attribute so
		// neither is silently dropped.
		obj["_value"] = *n.leaf
	}
	return cty.ObjectVal(obj)
}
