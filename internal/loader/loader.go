// Package loader implements component B: it walks the aggregation tree
// rooted at a project descriptor file, parsing every reachable module and
// detecting cycles in the underlying file graph.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/busjaeger/reactor/internal/ctxlog"
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/resolver"
)

// visitedSet is an insertion-ordered set of file paths, used so a cycle
// diagnostic can render the cycle path in traversal order rather than the
// unspecified order a plain map would give.
type visitedSet struct {
	order []string
	index map[string]struct{}
}

func newVisitedSet(seed string) *visitedSet {
	return &visitedSet{order: []string{seed}, index: map[string]struct{}{seed: {}}}
}

func (v *visitedSet) contains(path string) bool {
	_, ok := v.index[path]
	return ok
}

func (v *visitedSet) add(path string) {
	v.index[path] = struct{}{}
	v.order = append(v.order, path)
}

func (v *visitedSet) join() string {
	return strings.Join(v.order, " -> ")
}

// Loader walks the module aggregation tree, one raw descriptor per
// reachable file, using the given parser and locator collaborators.
type Loader struct {
	Parser  resolver.Parser
	Locator resolver.Locator
}

// New constructs a Loader from its collaborators.
func New(parser resolver.Parser, locator resolver.Locator) *Loader {
	return &Loader{Parser: parser, Locator: locator}
}

// LoadModules loads the descriptor at rootPom and every module it (or its
// descendants) aggregates. Descriptors are returned in document order: a
// descriptor appears before any of its children.
func (l *Loader) LoadModules(ctx context.Context, rootPom string) diagnostic.Result[[]*descriptor.Raw] {
	var results []diagnostic.Result[*descriptor.Raw]
	visited := newVisitedSet(rootPom)
	l.load(ctx, rootPom, &results, visited)
	return diagnostic.NewResultSet(results)
}

func (l *Loader) load(ctx context.Context, pom string, results *[]diagnostic.Result[*descriptor.Raw], visited *visitedSet) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("loading descriptor", "pom", pom)

	result := l.Parser.Parse(ctx, pom, resolver.ValidationStrict, true)
	model := result.Get()

	if model == nil {
		*results = append(*results, result)
		return
	}

	// Reserve this descriptor's slot before descending so it precedes its
	// children; the slot is filled in once the module problems are known.
	slot := len(*results)
	*results = append(*results, result)

	var problems []diagnostic.Diagnostic
	for _, module := range model.Modules {
		modulePom, ok := l.locateModulePom(pom, module)
		if !ok {
			problems = append(problems, diagnostic.Diagnostic{
				Severity: diagnostic.Error,
				Message:  "Child module " + modulePom + " of " + pom + " does not exist",
				Source:   pom,
			})
			continue
		}

		if visited.contains(modulePom) {
			problems = append(problems, diagnostic.Diagnostic{
				Severity: diagnostic.Error,
				Message:  "Child module " + modulePom + " of " + pom + " forms aggregation cycle " + visited.join(),
				Source:   pom,
			})
			continue
		}
		visited.add(modulePom)

		l.load(ctx, modulePom, results, visited)
	}
	(*results)[slot] = diagnostic.AddProblems(result, problems)
}

// locateModulePom resolves a declared module path fragment relative to
// pom's parent directory. Both forward and backward path separators are
// normalized before joining, matching the loader's cross-platform module
// path handling.
func (l *Loader) locateModulePom(pom, module string) (string, bool) {
	normalized := strings.ReplaceAll(strings.ReplaceAll(module, "\\", "/"), "/", string(filepath.Separator))
	moduleFile := filepath.Join(filepath.Dir(pom), normalized)

	if info, err := os.Stat(moduleFile); err == nil && !info.IsDir() {
		return moduleFile, true
	} else if err == nil && info.IsDir() {
		if file, ok := l.Locator.Locate(moduleFile); ok {
			return file, true
		}
		return moduleFile, false
	}
	return moduleFile, false
}
