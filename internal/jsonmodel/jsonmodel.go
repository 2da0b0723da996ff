// Package jsonmodel is a minimal concrete implementation of the core's
// out-of-scope collaborator interfaces (internal/resolver), so
// cmd/reactorctl has something runnable to wire against a real
// filesystem tree. The descriptor parser itself is explicitly out of
// core scope (spec.md §1) — this package is deliberately small: a JSON
// encoding of descriptor.Raw, read with encoding/json, with ${expr}
// string fields parsed as HCL template expressions the same way the
// pipeline package parses them internally.
package jsonmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/fsutil"
	"github.com/busjaeger/reactor/internal/resolver"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// DefaultFilename is the descriptor file name Locator looks for inside a
// directory-valued module reference.
const DefaultFilename = "reactor.json"

// DescriptorExtension is the suffix Locator falls back to scanning a
// directory for when it has no file named exactly DefaultFilename,
// allowing a module directory to use an alternate descriptor name
// (e.g. "a-module.reactor.json") as long as it's unambiguous.
const DescriptorExtension = ".reactor.json"

type rawDoc struct {
	GroupID    string         `json:"groupId"`
	ArtifactID string         `json:"artifactId"`
	Version    string         `json:"version"`
	Parent     *parentDoc     `json:"parent"`
	Modules    []string       `json:"modules"`
	Properties map[string]string `json:"properties"`
	Profiles   []profileDoc   `json:"profiles"`

	DependencyManagement []dependencyDoc `json:"dependencyManagement"`
	Dependencies         []dependencyDoc `json:"dependencies"`
	Plugins              []pluginDoc     `json:"plugins"`
	Repositories         []repositoryDoc `json:"repositories"`
}

type parentDoc struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

type dependencyDoc struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
	Type       string `json:"type"`
	Scope      string `json:"scope"`
}

type pluginDoc struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

type repositoryDoc struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type profileDoc struct {
	ID         string         `json:"id"`
	Activation activationDoc  `json:"activation"`
	Properties map[string]string `json:"properties"`

	Dependencies         []dependencyDoc `json:"dependencies"`
	DependencyManagement []dependencyDoc `json:"dependencyManagement"`
	Plugins              []pluginDoc     `json:"plugins"`
	Repositories         []repositoryDoc `json:"repositories"`
}

type activationDoc struct {
	ActiveByDefault bool   `json:"activeByDefault"`
	JDK             string `json:"jdk"`
	OS              string `json:"os"`
	PropertyName    string `json:"propertyName"`
	PropertyValue   string `json:"propertyValue"`
	FileExists      string `json:"fileExists"`
	FileMissing     string `json:"fileMissing"`
}

// Parser reads a reactor.json document off disk and converts it into a
// descriptor.Raw.
type Parser struct{}

// NewParser returns a ready-to-use Parser.
func NewParser() *Parser { return &Parser{} }

// Parse implements resolver.Parser.
func (p *Parser) Parse(_ context.Context, sourceFile string, _ resolver.ValidationLevel, _ bool) diagnostic.Result[*descriptor.Raw] {
	data, err := os.ReadFile(sourceFile)
	if err != nil {
		return fail(sourceFile, fmt.Errorf("reading descriptor: %w", err))
	}

	var doc rawDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail(sourceFile, fmt.Errorf("parsing descriptor: %w", err))
	}

	raw, err := toRaw(sourceFile, &doc)
	if err != nil {
		return fail(sourceFile, err)
	}
	return diagnostic.Success(raw)
}

func fail(sourceFile string, err error) diagnostic.Result[*descriptor.Raw] {
	return diagnostic.Failed[*descriptor.Raw]([]diagnostic.Diagnostic{{
		Severity: diagnostic.Fatal,
		Message:  err.Error(),
		Source:   sourceFile,
		Cause:    err,
	}})
}

func toRaw(sourceFile string, doc *rawDoc) (*descriptor.Raw, error) {
	props, err := exprMap(doc.Properties, sourceFile)
	if err != nil {
		return nil, err
	}

	raw := &descriptor.Raw{
		SourceFile: sourceFile,
		GroupID:    doc.GroupID,
		ArtifactID: doc.ArtifactID,
		Version:    doc.Version,
		Modules:    doc.Modules,
		Properties: props,
	}
	if doc.Parent != nil {
		raw.Parent = &descriptor.ParentRef{
			GroupID:    doc.Parent.GroupID,
			ArtifactID: doc.Parent.ArtifactID,
			Version:    doc.Parent.Version,
		}
	}
	if len(doc.DependencyManagement) > 0 {
		raw.DependencyManagement = &descriptor.DependencyManagement{Dependencies: toDependencies(doc.DependencyManagement)}
	}
	raw.Dependencies = toDependencies(doc.Dependencies)
	raw.Plugins = toPlugins(doc.Plugins)
	raw.Repositories = toRepositories(doc.Repositories)

	for _, pd := range doc.Profiles {
		profile, err := toProfile(sourceFile, pd)
		if err != nil {
			return nil, err
		}
		raw.Profiles = append(raw.Profiles, profile)
	}

	return raw, nil
}

func toProfile(sourceFile string, pd profileDoc) (descriptor.Profile, error) {
	props, err := exprMap(pd.Properties, sourceFile)
	if err != nil {
		return descriptor.Profile{}, err
	}

	activation := descriptor.Activation{
		ActiveByDefault: pd.Activation.ActiveByDefault,
		JDK:             pd.Activation.JDK,
	}
	if pd.Activation.OS != "" {
		activation.OS = &descriptor.OSActivation{Name: pd.Activation.OS}
	}
	if pd.Activation.PropertyName != "" {
		activation.Property = &descriptor.PropertyActivation{Name: pd.Activation.PropertyName, Value: pd.Activation.PropertyValue}
	}
	if pd.Activation.FileExists != "" || pd.Activation.FileMissing != "" {
		activation.File = &descriptor.FileActivation{Exists: pd.Activation.FileExists, Missing: pd.Activation.FileMissing}
	}

	overlay := descriptor.Overlay{
		Properties:   props,
		Dependencies: toDependencies(pd.Dependencies),
		Plugins:      toPlugins(pd.Plugins),
		Repositories: toRepositories(pd.Repositories),
	}
	if len(pd.DependencyManagement) > 0 {
		overlay.DependencyManagement = &descriptor.DependencyManagement{Dependencies: toDependencies(pd.DependencyManagement)}
	}

	return descriptor.Profile{ID: pd.ID, Activation: activation, Overlay: overlay}, nil
}

func toDependencies(docs []dependencyDoc) []descriptor.Dependency {
	if len(docs) == 0 {
		return nil
	}
	out := make([]descriptor.Dependency, len(docs))
	for i, d := range docs {
		out[i] = descriptor.Dependency{GroupID: d.GroupID, ArtifactID: d.ArtifactID, Version: d.Version, Type: d.Type, Scope: d.Scope}
	}
	return out
}

func toPlugins(docs []pluginDoc) []descriptor.Plugin {
	if len(docs) == 0 {
		return nil
	}
	out := make([]descriptor.Plugin, len(docs))
	for i, p := range docs {
		out[i] = descriptor.Plugin{GroupID: p.GroupID, ArtifactID: p.ArtifactID, Version: p.Version}
	}
	return out
}

func toRepositories(docs []repositoryDoc) []descriptor.Repository {
	if len(docs) == 0 {
		return nil
	}
	out := make([]descriptor.Repository, len(docs))
	for i, r := range docs {
		out[i] = descriptor.Repository{ID: r.ID, URL: r.URL}
	}
	return out
}

func exprMap(m map[string]string, sourceFile string) (map[string]hcl.Expression, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]hcl.Expression, len(m))
	for k, v := range m {
		expr, diags := hclsyntax.ParseTemplate([]byte(v), sourceFile, hcl.InitialPos)
		if diags.HasErrors() {
			return nil, fmt.Errorf("property %q: %s", k, diags.Error())
		}
		out[k] = expr
	}
	return out, nil
}

// Locator finds a DefaultFilename descriptor file inside a directory,
// used when a declared module path fragment resolves to a directory.
type Locator struct {
	Filename string
}

// NewLocator returns a Locator looking for DefaultFilename.
func NewLocator() *Locator {
	return &Locator{Filename: DefaultFilename}
}

// Locate implements resolver.Locator. It first looks for the exact
// configured filename, then falls back to scanning directory (and any
// subdirectories) for a file matching DescriptorExtension, accepting
// only a match that sits directly in directory rather than a nested
// module's own descriptor.
func (l *Locator) Locate(directory string) (string, bool) {
	name := l.Filename
	if name == "" {
		name = DefaultFilename
	}
	candidate := filepath.Join(directory, name)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, true
	}

	matches, err := fsutil.FindFilesByExtension(directory, DescriptorExtension)
	if err != nil {
		return "", false
	}
	for _, m := range matches {
		if filepath.Dir(m) == filepath.Clean(directory) {
			return m, true
		}
	}
	return "", false
}
