// Package submit drives a selected document through the store and
// validate-and-convert operations and turns every result into session state.
package submit

import (
	"errors"
	"fmt"

	"github.com/h2non/filetype"

	"github.com/dgallion1/pdfdesk/internal/remote"
)

// Kind selects the remote operation.
type Kind int

const (
	KindStore Kind = iota
	KindValidateConvert
)

func (k Kind) String() string {
	switch k {
	case KindStore:
		return "store"
	case KindValidateConvert:
		return "validate_convert"
	}
	return "unknown"
}

// Phase is the state of a session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseReady      Phase = "ready"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// OutcomeKind tells what a successful request achieved.
type OutcomeKind int

const (
	OutcomeStored OutcomeKind = iota
	OutcomeNoConversionNeeded
	OutcomeConverted
)

// Outcome of a successful request. Identifier is empty for
// OutcomeNoConversionNeeded.
type Outcome struct {
	Kind       OutcomeKind
	Identifier string
}

// Failure explains why a request failed. ErrorKind is one of transport,
// response, decode or internal; users see the same message for all of them.
type Failure struct {
	ErrorKind string
	Reason    string
	Err       error
}

func classify(err error) *Failure {
	var (
		te *remote.TransportError
		re *remote.ResponseError
		de *remote.DecodeError
	)
	kind := "internal"
	switch {
	case errors.As(err, &te):
		kind = "transport"
	case errors.As(err, &re):
		kind = "response"
	case errors.As(err, &de):
		kind = "decode"
	}
	return &Failure{ErrorKind: kind, Reason: err.Error(), Err: err}
}

// File is a selected document. Type is a sniffed extension such as "pdf",
// empty when the content is not recognized; it is a hint only.
type File struct {
	Name string
	Data []byte
	Type string
}

// NewFile sniffs the content type of data.
func NewFile(name string, data []byte) *File {
	f := &File{Name: name, Data: data}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		f.Type = kind.Extension
	}
	return f
}

// LooksLikePDF reports whether the content sniffed as a PDF.
func (f *File) LooksLikePDF() bool { return f.Type == "pdf" }

// Session is a snapshot of the controller's state.
type Session struct {
	File    *File
	Phase   Phase
	Kind    Kind // operation of the current or last request
	Outcome *Outcome
	Failure *Failure
}

// Message is the user-facing status line for the session.
func (s Session) Message() string {
	switch s.Phase {
	case PhaseSubmitting:
		if s.Kind == KindStore {
			return "Uploading..."
		}
		return "Validating..."
	case PhaseSucceeded:
		switch s.Outcome.Kind {
		case OutcomeNoConversionNeeded:
			return "PDF is already compliant with PDF/A-3."
		case OutcomeConverted:
			return "PDF converted to PDF/A-3! Converted file key: " + s.Outcome.Identifier
		default:
			return "PDF uploaded successfully! File key: " + s.Outcome.Identifier
		}
	case PhaseFailed:
		return "Operation failed. Please try again. " + s.Failure.Reason
	}
	return ""
}

// UserInputError is returned when a request is attempted without a file.
type UserInputError struct {
	Kind Kind
}

func (e *UserInputError) Error() string {
	if e.Kind == KindValidateConvert {
		return "Please select a PDF file before validating."
	}
	return "Please select a PDF file before uploading."
}

// ErrInFlight rejects a request while another one is outstanding.
var ErrInFlight = errors.New("a request is already in progress")

type panicError struct{ v any }

func (e panicError) Error() string { return fmt.Sprintf("transport panic: %v", e.v) }
