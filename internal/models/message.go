package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is the envelope pushed on the event stream.
type Event struct {
	ID     string    `json:"id,omitempty"`
	Type   string    `json:"type"`
	Target string    `json:"target,omitempty"`
	Origin string    `json:"origin,omitempty"`
	Args   EventArgs `json:"args"`
}

// EventArgs carries the event class plus event-specific fields.
//
// Status and Track are set for music events; every argument, including those two, is kept in Fields.
type EventArgs struct {
	Type   string         `json:"type"`
	Status *MusicStatus   `json:"status,omitempty"`
	Track  *Track         `json:"track,omitempty"`
	Fields map[string]any `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the full argument map in Fields.
func (a *EventArgs) UnmarshalJSON(data []byte) error {
	type known EventArgs
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}

	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*a = EventArgs(k)
	a.Fields = fields
	return nil
}

// Class returns the short class name of the event, e.g. "MusicPlayEvent" for
// "platypush.message.event.music.MusicPlayEvent".
func (e *Event) Class() string {
	if i := strings.LastIndex(e.Args.Type, "."); i >= 0 {
		return e.Args.Type[i+1:]
	}
	return e.Args.Type
}

// Request is the envelope posted to the /execute endpoint.
type Request struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Target string         `json:"target"`
	Action string         `json:"action"`
	Args   map[string]any `json:"args,omitempty"`
}

// Response is the reply envelope returned for a [Request].
type Response struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type"`
	Target   string       `json:"target,omitempty"`
	Origin   string       `json:"origin,omitempty"`
	Response ResponseBody `json:"response"`
}

// ResponseBody holds the action output and any errors reported by the backend.
type ResponseBody struct {
	Output json.RawMessage `json:"output"`
	Errors []any           `json:"errors"`
}

// IsError reports whether the backend attached any errors to the response.
func (r *Response) IsError() bool {
	return len(r.Response.Errors) != 0
}

// ErrorText joins the reported errors into one message.
func (r *Response) ErrorText() string {
	parts := make([]string, 0, len(r.Response.Errors))
	for _, e := range r.Response.Errors {
		parts = append(parts, fmt.Sprint(e))
	}
	return strings.Join(parts, "; ")
}

// Decode unmarshals the response output into v. A null or missing output leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Response.Output) == 0 || string(r.Response.Output) == "null" {
		return nil
	}
	return json.Unmarshal(r.Response.Output, v)
}
