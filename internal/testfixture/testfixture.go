// Package testfixture provides in-memory fake implementations of the
// collaborator interfaces the core consumes (parser, locator, external
// resolver, super-model provider), used across package tests in place of
// a real POM parser or network resolver.
package testfixture

import (
	"context"
	"fmt"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/resolver"
)

// Parser is a fake resolver.Parser backed by an in-memory map from source
// file path to a pre-built raw descriptor (or a canned failure).
type Parser struct {
	Descriptors map[string]*descriptor.Raw
	Failures    map[string][]diagnostic.Diagnostic
}

// NewParser returns an empty fake parser ready for its fixtures to be
// populated via AddDescriptor/AddFailure.
func NewParser() *Parser {
	return &Parser{
		Descriptors: make(map[string]*descriptor.Raw),
		Failures:    make(map[string][]diagnostic.Diagnostic),
	}
}

// AddDescriptor registers d to be returned when sourceFile is parsed.
func (p *Parser) AddDescriptor(sourceFile string, d *descriptor.Raw) {
	d.SourceFile = sourceFile
	p.Descriptors[sourceFile] = d
}

// AddFailure registers diags to be returned as a fatal parse failure for
// sourceFile.
func (p *Parser) AddFailure(sourceFile string, diags []diagnostic.Diagnostic) {
	p.Failures[sourceFile] = diags
}

// Parse implements resolver.Parser.
func (p *Parser) Parse(_ context.Context, sourceFile string, _ resolver.ValidationLevel, _ bool) diagnostic.Result[*descriptor.Raw] {
	if diags, ok := p.Failures[sourceFile]; ok {
		return diagnostic.Failed[*descriptor.Raw](diags)
	}
	if d, ok := p.Descriptors[sourceFile]; ok {
		return diagnostic.Success(d)
	}
	return diagnostic.Failed[*descriptor.Raw]([]diagnostic.Diagnostic{{
		Severity: diagnostic.Fatal,
		Message:  fmt.Sprintf("no fixture registered for %s", sourceFile),
		Source:   sourceFile,
	}})
}

// Locator is a fake resolver.Locator backed by a directory-to-file map.
type Locator struct {
	Files map[string]string
}

// NewLocator returns an empty fake locator.
func NewLocator() *Locator {
	return &Locator{Files: make(map[string]string)}
}

// Add registers the descriptor file found within directory.
func (l *Locator) Add(directory, file string) {
	l.Files[directory] = file
}

// Locate implements resolver.Locator.
func (l *Locator) Locate(directory string) (string, bool) {
	f, ok := l.Files[directory]
	return f, ok
}

// External is a fake resolver.External backed by an in-memory map from
// coordinate triple to source file.
type External struct {
	Sources      map[string]string
	Repositories []descriptor.Repository
}

// NewExternal returns an empty fake external resolver.
func NewExternal() *External {
	return &External{Sources: make(map[string]string)}
}

// Add registers the source file to return for the given coordinate triple.
func (e *External) Add(groupID, artifactID, version, sourceFile string) {
	e.Sources[key(groupID, artifactID, version)] = sourceFile
}

func key(groupID, artifactID, version string) string {
	return groupID + ":" + artifactID + ":" + version
}

// ResolveModel implements resolver.External.
func (e *External) ResolveModel(_ context.Context, groupID, artifactID, version string) (string, error) {
	if f, ok := e.Sources[key(groupID, artifactID, version)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("no external descriptor for %s:%s:%s", groupID, artifactID, version)
}

// AddRepository implements resolver.External.
func (e *External) AddRepository(repo descriptor.Repository, _ bool) error {
	e.Repositories = append(e.Repositories, repo)
	return nil
}

// NewCopy implements resolver.External.
func (e *External) NewCopy() resolver.External {
	cp := &External{Sources: make(map[string]string, len(e.Sources))}
	for k, v := range e.Sources {
		cp.Sources[k] = v
	}
	return cp
}

// SuperModelProvider is a fake resolver.SuperModelProvider that always
// returns the same fixed super descriptor regardless of version.
type SuperModelProvider struct {
	Model *descriptor.Raw
}

// NewSuperModelProvider returns a provider for a minimal empty super
// descriptor if model is nil.
func NewSuperModelProvider(model *descriptor.Raw) *SuperModelProvider {
	if model == nil {
		model = &descriptor.Raw{SourceFile: "(super pom)"}
	}
	return &SuperModelProvider{Model: model}
}

// GetSuperModel implements resolver.SuperModelProvider.
func (s *SuperModelProvider) GetSuperModel(_ string) *descriptor.Raw {
	return s.Model
}

// ParentLocator is a fake pipeline.ParentLocator backed by an in-memory
// map from coordinate triple to raw descriptor, for tests that exercise
// lineage traversal without a real workspace or external resolver.
type ParentLocator struct {
	Descriptors map[string]*descriptor.Raw
}

// NewParentLocator returns an empty fake parent locator.
func NewParentLocator() *ParentLocator {
	return &ParentLocator{Descriptors: make(map[string]*descriptor.Raw)}
}

// Add registers the descriptor to return for the given parent coordinate.
func (l *ParentLocator) Add(groupID, artifactID, version string, d *descriptor.Raw) {
	l.Descriptors[key(groupID, artifactID, version)] = d
}

// LocateParent implements pipeline.ParentLocator.
func (l *ParentLocator) LocateParent(_ context.Context, ref descriptor.ParentRef) diagnostic.Result[*descriptor.Raw] {
	if d, ok := l.Descriptors[key(ref.GroupID, ref.ArtifactID, ref.Version)]; ok {
		return diagnostic.Success(d)
	}
	return diagnostic.Failed[*descriptor.Raw]([]diagnostic.Diagnostic{{
		Severity: diagnostic.Fatal,
		Message:  fmt.Sprintf("no fixture registered for parent %s:%s:%s", ref.GroupID, ref.ArtifactID, ref.Version),
	}})
}
