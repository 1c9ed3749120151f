// Package ntfserr distinguishes the four error kinds named in the error
// handling design: I/O, structure, semantic, and feature. Structure and
// semantic errors describe a single record or structure: the streaming
// scanners skip a malformed record and continue, while functions that
// decode or locate one structure (mft.Decode, the extractor,
// logfile.NewDecoder) return them to their caller. I/O and feature errors propagate and
// are meant to be surfaced with a one-line message and a non-zero exit.
package ntfserr

import "fmt"

// IOError wraps a failure reading the underlying image or file.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("i/o error during %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// NewIO wraps err as an IOError for operation op.
func NewIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}

// StructureError marks a malformed on-disk structure: bad signature,
// length overflow, fixup mismatch. Decoders drop the record and continue.
type StructureError struct {
	Op  string
	Err error
}

func (e *StructureError) Error() string { return fmt.Sprintf("structure error in %s: %v", e.Op, e.Err) }
func (e *StructureError) Unwrap() error { return e.Err }

func NewStructure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StructureError{Op: op, Err: err}
}

// SemanticError marks a structurally valid but logically impossible value:
// a reference out of range, an impossible namespace.
type SemanticError struct {
	Op  string
	Err error
}

func (e *SemanticError) Error() string { return fmt.Sprintf("semantic error in %s: %v", e.Op, e.Err) }
func (e *SemanticError) Unwrap() error { return e.Err }

func NewSemantic(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SemanticError{Op: op, Err: err}
}

// FeatureError marks an unsupported-but-recognized situation: an unknown
// USN record version, a missing evidence-format backend.
type FeatureError struct {
	Op  string
	Err error
}

func (e *FeatureError) Error() string { return fmt.Sprintf("unsupported %s: %v", e.Op, e.Err) }
func (e *FeatureError) Unwrap() error { return e.Err }

func NewFeature(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FeatureError{Op: op, Err: err}
}
