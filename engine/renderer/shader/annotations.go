// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @oxy: that register which engine component provides the resource behind a
// hand-written @group/@binding declaration, and optionally the role that binding plays.
// Roles can refine the bind group layout entry the parser would otherwise infer from the
// WGSL type alone (for example an unfilterable float texture).
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation.
	//
	// An optional binding role can be appended after the provider identity to declare the
	// semantic purpose of an individual binding within a multi-binding provider group.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@oxy:provider 0 0 pixel_buffer pixels
	//   //@oxy:provider 0 1 pixel_buffer point_sampler
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments:
	//   - provider: [0] = provider identity (e.g. "pixel_buffer"), [1] = binding role (optional, e.g. "pixels")
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index of the annotated binding.
	Group *int

	// Binding is the @binding index of the annotated binding.
	Binding *int
}

// Role returns the optional binding role of a provider annotation, or an empty argument if none was given.
//
// Returns:
//   - AnnotationArg: the binding role or ""
func (a Annotation) Role() AnnotationArg {
	if len(a.Args) < 2 {
		return ""
	}
	return a.Args[1]
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Provider identity arguments ────────────────────────────────────────────────

const (
	// AnnotationArgPixelBuffer identifies the CPU pixel buffer's GPU mirror (texture + sampler).
	AnnotationArgPixelBuffer AnnotationArg = "pixel_buffer"
)

// ── Binding role arguments ─────────────────────────────────────────────────────

const (
	// AnnotationArgPixels marks a float texture binding that must be declared unfilterable,
	// as required for RGBA32Float textures.
	AnnotationArgPixels AnnotationArg = "pixels"

	// AnnotationArgPointSampler marks a sampler binding that must be declared non-filtering
	// so it can be paired with an unfilterable texture.
	AnnotationArgPointSampler AnnotationArg = "point_sampler"
)

// validProviderIdentities lists all AnnotationArg values accepted as provider identities.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgPixelBuffer,
}

// validBindingRoles lists all AnnotationArg values accepted as binding role qualifiers.
var validBindingRoles = []AnnotationArg{
	AnnotationArgPixels,
	AnnotationArgPointSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy provider annotation: %w", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy provider annotation: %w", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @oxy provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
