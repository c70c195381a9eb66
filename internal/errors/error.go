package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryRoute      Category = "route"
	CategoryNavigation Category = "navigation"
	CategoryView       Category = "view"
	CategoryConfig     Category = "config"
	CategoryProtocol   Category = "protocol"
)

// NavError is a structured error with a registered code.
type NavError struct {
	// Code is a unique error identifier (e.g., "N001").
	Code string

	// Category is the error type (route, navigation, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the navigation path the error refers to, if any.
	Path string

	// Chain is the redirect chain visited before the failure.
	Chain []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *NavError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *NavError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a NavError with the same code.
func (e *NavError) Is(target error) bool {
	t, ok := target.(*NavError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

func (e *NavError) clone() *NavError {
	c := *e
	if e.Chain != nil {
		c.Chain = append([]string(nil), e.Chain...)
	}
	return &c
}

// WithPath returns a copy of the error carrying the given path.
func (e *NavError) WithPath(path string) *NavError {
	c := e.clone()
	c.Path = path
	return c
}

// WithChain returns a copy of the error carrying a redirect chain.
func (e *NavError) WithChain(chain []string) *NavError {
	c := e.clone()
	c.Chain = append([]string(nil), chain...)
	return c
}

// WithDetail returns a copy of the error with a detailed explanation.
func (e *NavError) WithDetail(d string) *NavError {
	c := e.clone()
	c.Detail = d
	return c
}

// WithSuggestion returns a copy of the error with a fix suggestion.
func (e *NavError) WithSuggestion(s string) *NavError {
	c := e.clone()
	c.Suggestion = s
	return c
}

// Wrap returns a copy of the error wrapping err.
func (e *NavError) Wrap(err error) *NavError {
	c := e.clone()
	c.Wrapped = err
	return c
}

// New creates a NavError from a registered error code.
func New(code string) *NavError {
	template, ok := registry[code]
	if !ok {
		return &NavError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &NavError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a NavError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *NavError {
	return &NavError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a NavError with the given code.
// A NavError is returned unchanged.
func FromError(err error, code string) *NavError {
	if err == nil {
		return nil
	}
	if ne, ok := err.(*NavError); ok {
		return ne
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first NavError in err's chain, or "".
func CodeOf(err error) string {
	for err != nil {
		if ne, ok := err.(*NavError); ok {
			return ne.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
