// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations and collects a declarations list that the renderer
// uses to refine bind group layouts and to wire GPU resources to bindings without
// string lookups on variable names.
package shader

import (
	"fmt"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// declarations accumulates provider annotations during a Process call.
	// Reset at the start of each Process invocation.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations while
// collecting a declarations list for downstream resource wiring.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and validates every @oxy: annotation in it.
	// Provider annotations produce no WGSL output (the annotation comment is kept as-is) but are
	// recorded in the declarations list. Each annotation must be followed by the @group/@binding
	// declaration it describes somewhere in the source.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if any annotation is malformed or references a binding that is not declared
	Process(source string) (string, error)

	// Declarations returns the provider annotations collected during the most recent call to
	// Process, in source-order. Returns nil if Process has not been called.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			continue
		}

		switch a.Type {
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}

	// every annotation must describe a binding that actually exists
	_, varNames := parseBindGroupLayouts(source, 0)
	for _, d := range p.declarations {
		if _, ok := varNames[*d.Group][*d.Binding]; !ok {
			return "", fmt.Errorf("line %d: @oxy provider annotation refers to undeclared @group(%d) @binding(%d)", d.Line, *d.Group, *d.Binding)
		}
	}

	return source, nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
