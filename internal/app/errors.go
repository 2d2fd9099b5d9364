package app

import (
	"errors"
	"fmt"

	"jsonsql/internal/convert"
	"jsonsql/internal/pipeline"
	"jsonsql/internal/service"
)

// Message is a user-facing notification.
type Message struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Kind    string `json:"kind"` // pipeline error kind, "" on success
	IsError bool   `json:"isError"`
}

// UserMessage maps a conversion error to the dialog shown for it.
func UserMessage(err error) Message {
	var (
		parseErr  *convert.ParseError
		schemaErr *convert.SchemaError
		ioErr     *convert.IOError
	)
	m := Message{Kind: pipeline.ErrorKind(err), IsError: true, Body: err.Error()}
	switch {
	case errors.Is(err, service.ErrBusy):
		m.Title = "Conversion in progress"
		m.Body = "Wait for the current conversion to finish."
	case errors.As(err, &parseErr):
		m.Title = "Invalid JSON"
		detail := parseErr.Msg
		if detail == "" && parseErr.Err != nil {
			detail = parseErr.Err.Error()
		}
		m.Body = "The input is not a valid JSON array: " + detail
		if parseErr.Offset > 0 {
			m.Body += fmt.Sprintf(" (near byte %d)", parseErr.Offset)
		}
		m.Body += "."
	case errors.As(err, &schemaErr):
		m.Title = "Unsupported record"
		m.Body = fmt.Sprintf("Element %d of the array is %s; every element must be an object.", schemaErr.Index, schemaErr.Got)
	case errors.Is(err, convert.ErrEmptyTable):
		m.Title = "Table name missing"
		m.Body = "Enter the name of the table to insert into."
	case errors.As(err, &ioErr):
		m.Title = "Could not write file"
		m.Body = fmt.Sprintf("Could not %s %s: %v", ioErr.Op, ioErr.Path, ioErr.Err)
	case errors.Is(err, pipeline.ErrSource):
		m.Title = "Could not load JSON"
	case errors.Is(err, pipeline.ErrDestination):
		m.Title = "Could not load rows"
	default:
		m.Title = "Conversion failed"
	}
	return m
}

// SuccessMessage describes a finished conversion.
func SuccessMessage(res *pipeline.RunResult) Message {
	noun := "statements"
	if res.StatementsWritten == 1 {
		noun = "statement"
	}
	return Message{
		Title: "Conversion complete",
		Body:  fmt.Sprintf("Wrote %d %s to %s.", res.StatementsWritten, noun, res.Location),
	}
}
