package jsonapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Error is a protocol-level failure that maps onto one member of a JSON:API
// error document. Status is the HTTP status the error travels with; Pointer
// and Header fill the error source when set.
type Error struct {
	Status  int
	Title   string
	Detail  string
	Pointer string
	Header  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s", e.Title, e.Detail)
	}
	return e.Title
}

// ErrorList aggregates protocol errors that are reported together in a single
// error document, such as the batch-wide model-validation report.
type ErrorList struct {
	Errors []*Error
}

// Error implements the error interface.
func (l *ErrorList) Error() string {
	if len(l.Errors) == 0 {
		return "no errors"
	}
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", l.Errors[0].Error(), len(l.Errors)-1)
}

// Status returns the HTTP status shared by the aggregated errors. When the
// statuses differ, the highest one wins.
func (l *ErrorList) Status() int {
	status := 0
	for _, e := range l.Errors {
		if e.Status > status {
			status = e.Status
		}
	}
	return status
}

// ErrorObject is the wire form of a single error.
type ErrorObject struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status,omitempty"`
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource locates the part of the request an error originates from.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Header    string `json:"header,omitempty"`
}

// ErrorDocument is a JSON:API document whose primary data is errors.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// NewErrorDocument converts any error into an error document. Protocol errors
// and lists keep their status, title, detail, and source; anything else
// becomes a single error with the given fallback status.
func NewErrorDocument(err error, fallbackStatus int) (int, *ErrorDocument) {
	var list *ErrorList
	if errors.As(err, &list) {
		doc := &ErrorDocument{Errors: make([]ErrorObject, 0, len(list.Errors))}
		for _, e := range list.Errors {
			doc.Errors = append(doc.Errors, newErrorObject(e))
		}
		return list.Status(), doc
	}

	var protoErr *Error
	if errors.As(err, &protoErr) {
		return protoErr.Status, &ErrorDocument{Errors: []ErrorObject{newErrorObject(protoErr)}}
	}

	obj := ErrorObject{
		ID:     uuid.NewString(),
		Status: strconv.Itoa(fallbackStatus),
		Title:  "An unhandled error occurred while processing this request.",
		Detail: err.Error(),
	}
	return fallbackStatus, &ErrorDocument{Errors: []ErrorObject{obj}}
}

func newErrorObject(e *Error) ErrorObject {
	obj := ErrorObject{
		ID:     uuid.NewString(),
		Status: strconv.Itoa(e.Status),
		Title:  e.Title,
		Detail: e.Detail,
	}
	if e.Pointer != "" || e.Header != "" {
		obj.Source = &ErrorSource{Pointer: e.Pointer, Header: e.Header}
	}
	return obj
}
