package framework

import "context"

// ComplexityTier advertises how much work a workflow is prepared to do. The
// router shows it to the model when choosing a strategy.
type ComplexityTier string

const (
	TierSimple   ComplexityTier = "simple"
	TierMedium   ComplexityTier = "medium"
	TierComplex  ComplexityTier = "complex"
	TierAdvanced ComplexityTier = "advanced"
)

// Valid reports whether the tier is one of the known values.
func (t ComplexityTier) Valid() bool {
	switch t {
	case TierSimple, TierMedium, TierComplex, TierAdvanced:
		return true
	}
	return false
}

// Descriptor carries the static metadata of a workflow. Concrete workflows
// embed it to satisfy the metadata half of the Workflow interface.
type Descriptor struct {
	WorkflowName        string
	WorkflowDescription string
	Tier                ComplexityTier
}

func (d Descriptor) Name() string               { return d.WorkflowName }
func (d Descriptor) Description() string        { return d.WorkflowDescription }
func (d Descriptor) Complexity() ComplexityTier { return d.Tier }

// Validate rejects descriptors with missing metadata.
func (d Descriptor) Validate() error {
	switch {
	case d.WorkflowName == "":
		return &DescriptorError{Field: "name"}
	case d.WorkflowDescription == "":
		return &DescriptorError{Workflow: d.WorkflowName, Field: "description"}
	case !d.Tier.Valid():
		return &DescriptorError{Workflow: d.WorkflowName, Field: "complexity"}
	}
	return nil
}

// Workflow is a strategy that turns one natural-language instruction into
// edits inside the session sandbox. It mutates files in place and reports no
// diff; callers compute changes through version control afterwards.
type Workflow interface {
	Name() string
	Description() string
	Complexity() ComplexityTier
	ApplyChanges(ctx context.Context, session *Session, instruction string) error
}

// DescriptorOf snapshots the metadata of a workflow.
func DescriptorOf(w Workflow) Descriptor {
	return Descriptor{
		WorkflowName:        w.Name(),
		WorkflowDescription: w.Description(),
		Tier:                w.Complexity(),
	}
}
