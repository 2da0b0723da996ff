package pipeline

import (
	"fmt"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/resolver"
)

// Validate applies the rule level selected by level to the effective
// model and reports the resulting diagnostics, mirroring
// DefaultModelValidator's escalating rule sets:
//
//   - Minimal: only checks that would make the descriptor unusable —
//     missing groupId/artifactId/version anywhere they're required.
//   - V20: additionally flags dependencies missing a version as a
//     WARNING (Maven 2 tolerated inherited/implicit versions here; this
//     model treats it as worth a human's attention, not a hard failure).
//   - Strict: escalates every V20 warning to an ERROR, and additionally
//     rejects duplicate dependency declarations (same management key
//     appearing twice) as an ERROR.
func Validate(level resolver.ValidationLevel, model *descriptor.Raw) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	if model.GroupID == "" && model.Parent == nil {
		diags = append(diags, fatal(model, "'groupId' is missing and no parent declares one"))
	}
	if model.ArtifactID == "" {
		diags = append(diags, fatal(model, "'artifactId' is missing"))
	}
	if model.Version == "" && model.Parent == nil {
		diags = append(diags, fatal(model, "'version' is missing and no parent declares one"))
	}

	for _, d := range model.Dependencies {
		if d.GroupID == "" {
			diags = append(diags, fatal(model, fmt.Sprintf("dependency %s: 'groupId' is missing", d.Key())))
		}
		if d.ArtifactID == "" {
			diags = append(diags, fatal(model, fmt.Sprintf("dependency %s: 'artifactId' is missing", d.Key())))
		}
	}

	if level == resolver.ValidationMinimal {
		return diags
	}

	missingVersionSeverity := diagnostic.Warning
	if level == resolver.ValidationStrict {
		missingVersionSeverity = diagnostic.Error
	}
	for _, d := range model.Dependencies {
		if d.Version == "" {
			diags = append(diags, diagnostic.Diagnostic{
				Severity: missingVersionSeverity,
				Message:  fmt.Sprintf("dependency %s: 'version' is missing", d.Key()),
				Source:   model.SourceFile,
			})
		}
	}

	if level != resolver.ValidationStrict {
		return diags
	}

	seen := make(map[string]bool, len(model.Dependencies))
	for _, d := range model.Dependencies {
		if seen[d.Key()] {
			diags = append(diags, diagnostic.Diagnostic{
				Severity: diagnostic.Error,
				Message:  fmt.Sprintf("duplicate declaration of dependency %s", d.Key()),
				Source:   model.SourceFile,
			})
		}
		seen[d.Key()] = true
	}

	return diags
}

func fatal(model *descriptor.Raw, message string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{Severity: diagnostic.Fatal, Message: message, Source: model.SourceFile}
}
