// Package descriptor defines the project descriptor types that flow through
// the model pipeline: Raw, as parsed off disk; Activated, with profiles
// injected; Interpolated, with lineage assembled and properties expanded;
// and Effective, after enablement. Each later stage's type embeds the
// *Raw that stage produced, plus the data that stage adds.
package descriptor

import (
	"fmt"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// ParentRef is the (groupId, artifactId, version) triple a descriptor
// declares to name its parent. The reference is resolved first within the
// workspace index, by groupId and artifactId only, otherwise delegated to
// the external resolver.
type ParentRef struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// Dependency is a single dependency or dependency-management entry.
// GroupID, ArtifactID and Version are raw strings; any ${expr} reference
// they embed is kept as written, since the pipeline interpolates only the
// property stack.
type Dependency struct {
	GroupID    string
	ArtifactID string
	Version    string
	Type       string // defaults to "jar" once effective; "pom" marks a BOM
	Scope      string // "import" marks a dependency-management import
}

// Key returns the management key groupId:artifactId:type (type defaulting
// to "jar") used to match a dependency against its managed counterpart,
// mirroring the original's Dependency.getManagementKey without a
// classifier component.
func (d Dependency) Key() string {
	typ := d.Type
	if typ == "" {
		typ = "jar"
	}
	return d.GroupID + ":" + d.ArtifactID + ":" + typ
}

// Plugin is a build-plugin declaration, keyed the same way as Dependency.
type Plugin struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// Key returns the groupId:artifactId plugin key that inheritance assembly
// merges plugin lists by.
func (p Plugin) Key() string {
	return p.GroupID + ":" + p.ArtifactID
}

// Repository is a remote artifact repository declared by a descriptor.
type Repository struct {
	ID  string
	URL string
}

// DependencyManagement holds the managed dependency versions a descriptor
// contributes, plus any BOM imports (type=pom, scope=import dependencies)
// still pending resolution.
type DependencyManagement struct {
	Dependencies []Dependency
}

// Activation is the predicate attached to a Profile, evaluated against a
// descriptor's ActivationContext: an OS condition, when set, must match;
// then a property condition, when set, decides; otherwise a file
// condition decides. A JDK condition, consulted only when neither a
// property nor a file condition is set, is never satisfied.
type Activation struct {
	ActiveByDefault bool
	JDK             string
	OS              *OSActivation
	Property        *PropertyActivation
	File            *FileActivation
}

// OSActivation matches the activation context's operating system name.
type OSActivation struct {
	Name string
}

// PropertyActivation matches a property name (and, if Value is set, its
// value) in the activation context's property union.
type PropertyActivation struct {
	Name  string
	Value string
}

// FileActivation matches the presence (Exists) or absence (Missing) of a
// file relative to the descriptor's base directory.
type FileActivation struct {
	Exists  string
	Missing string
}

// Profile is an identifier, an activation predicate, and a partial
// descriptor overlay that is merged into the owning descriptor when the
// profile is active.
type Profile struct {
	ID         string
	Activation Activation
	Overlay    Overlay
}

// Overlay is the partial content a profile contributes when active. It
// mirrors the fields of Raw that profiles are permitted to override.
type Overlay struct {
	Properties           map[string]hcl.Expression
	Dependencies         []Dependency
	DependencyManagement *DependencyManagement
	Plugins              []Plugin
	Repositories         []Repository
}

// Raw is the pure result of parsing: no inheritance, no interpolation, no
// profile injection applied.
type Raw struct {
	// SourceFile is the filesystem path this descriptor was parsed from.
	SourceFile string

	GroupID    string
	ArtifactID string
	Version    string

	Parent *ParentRef

	// Modules holds the raw module path fragments declared for aggregation;
	// resolved relative to SourceFile's parent directory by the loader.
	Modules []string

	Properties           map[string]hcl.Expression
	Profiles             []Profile
	DependencyManagement *DependencyManagement
	Dependencies         []Dependency
	Plugins              []Plugin
	Repositories         []Repository
}

// Coordinate derives the version-less workspace identifier for r. GroupID
// is taken from the declared parent reference when the descriptor omits
// its own; if still absent, r is invalid and an error is returned.
func (r *Raw) Coordinate() (coordinate.Coordinate, error) {
	groupID := r.GroupID
	if groupID == "" && r.Parent != nil {
		groupID = r.Parent.GroupID
	}
	if groupID == "" {
		return coordinate.Coordinate{}, fmt.Errorf("descriptor %s: groupId is missing and no parent declares one", r.SourceFile)
	}
	return coordinate.New(groupID, r.ArtifactID)
}

// Clone returns a deep-enough copy of r for activation to mutate safely:
// slices and maps are copied one level deep, matching Maven's Model.clone()
// semantics used before profile injection.
func (r *Raw) Clone() *Raw {
	if r == nil {
		return nil
	}
	c := *r
	c.Modules = append([]string(nil), r.Modules...)
	c.Properties = cloneExprMap(r.Properties)
	c.Profiles = append([]Profile(nil), r.Profiles...)
	c.Dependencies = append([]Dependency(nil), r.Dependencies...)
	c.Plugins = append([]Plugin(nil), r.Plugins...)
	c.Repositories = append([]Repository(nil), r.Repositories...)
	if r.DependencyManagement != nil {
		dm := *r.DependencyManagement
		dm.Dependencies = append([]Dependency(nil), r.DependencyManagement.Dependencies...)
		c.DependencyManagement = &dm
	}
	return &c
}

func cloneExprMap(m map[string]hcl.Expression) map[string]hcl.Expression {
	if m == nil {
		return nil
	}
	out := make(map[string]hcl.Expression, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Activated wraps a Raw descriptor after its active POM profiles have been
// injected and its set of active external profiles recorded.
type Activated struct {
	*Raw
	ActiveExternalProfiles []Profile
	ActivationContext      ActivationContext
}

// ActivationContext carries the property union and environment facts that
// profile activation predicates are evaluated against.
type ActivationContext struct {
	BaseDirectory      string
	ActiveProfileIDs   []string
	InactiveProfileIDs []string
	SystemProperties   map[string]string
	UserProperties     map[string]string
	ProjectProperties  map[string]string
}

// Interpolated holds the descriptor produced from an Activated one after
// parent lineage has been assembled by inheritance and its property stack
// has been resolved; dependency, plugin and repository string fields keep
// any ${expr} reference as written.
type Interpolated struct {
	*Raw
	Lineage []*Activated
	// Properties holds the fully-resolved property stack as cty values, in
	// the form pipeline.InterpolateString takes as its variables.
	Properties map[string]cty.Value
}

// Effective holds the descriptor produced from an Interpolated one after lifecycle-binding
// injection, dependency-management injection, default-value injection and
// effective-model validation.
type Effective struct {
	*Raw
	Properties map[string]cty.Value
}
