package dsl

import "fmt"

// ParsingError reports a failed lookup or conversion on a parsed document.
// Element is the container the lookup ran against, kept for diagnostics.
type ParsingError struct {
	Reason  string
	Element Element
}

func newParsingError(reason string, el Element) *ParsingError {
	return &ParsingError{Reason: reason, Element: el}
}

// Error implements the error interface.
func (e *ParsingError) Error() string {
	if e.Element == nil {
		return "CL parsing error: " + e.Reason
	}
	return fmt.Sprintf("CL parsing error (%s, line %d): %s", kindOf(e.Element), e.Element.Line(), e.Reason)
}
