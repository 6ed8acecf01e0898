package docx

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBody is returned when word/document.xml is missing or has no w:body.
	ErrNoBody = errors.New("docx: document has no body")

	// ErrZeroConsumed reports a translator that produced nodes without
	// consuming any element.
	ErrZeroConsumed = errors.New("docx: translator produced nodes but consumed no elements")

	// ErrOverConsumed reports a translator that consumed more elements than remained.
	ErrOverConsumed = errors.New("docx: translator consumed more elements than remained")

	// ErrUnknownKind is returned when no decoder exists for a node kind.
	ErrUnknownKind = errors.New("docx: no decoder for node kind")

	// ErrPanic wraps a recovered translator panic.
	ErrPanic = errors.New("docx: translator panicked")
)

// DiagnosticKind classifies a recoverable problem found during conversion.
type DiagnosticKind int

const (
	// UnhandledElement: no translator accepted the element.
	UnhandledElement DiagnosticKind = iota
	// TranslatorFailure: a translator returned an error or panicked.
	TranslatorFailure
	// MalformedReference: a relationship, comment or note id could not be resolved.
	MalformedReference
	// StructuralInconsistency: e.g. a field without its closing marker.
	StructuralInconsistency
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnhandledElement:
		return "unhandled-element"
	case TranslatorFailure:
		return "translator-failure"
	case MalformedReference:
		return "malformed-reference"
	case StructuralInconsistency:
		return "structural-inconsistency"
	default:
		return fmt.Sprintf("diagnostic(%d)", int(k))
	}
}

// Diagnostic is a non-fatal problem recorded while converting a part.
type Diagnostic struct {
	Kind    DiagnosticKind    `json:"kind"`
	Part    string            `json:"part,omitempty"`
	Index   int               `json:"index"`
	Tag     string            `json:"tag,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Message string            `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Tag == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s[%d] %s", d.Kind, d.Tag, d.Index, d.Message)
}

// TranslatorError describes a failure of a single translator on one element.
type TranslatorError struct {
	Translator string
	Index      int
	Tag        string
	Err        error
}

func (e *TranslatorError) Error() string {
	return fmt.Sprintf("docx: translator %s failed on %s at index %d: %v", e.Translator, e.Tag, e.Index, e.Err)
}

func (e *TranslatorError) Unwrap() error {
	return e.Err
}
