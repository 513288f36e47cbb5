package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type ResponseKind int

const (
	ResponseNone ResponseKind = iota
	ResponseNumber
	ResponseText
	ResponseChoices
)

// Response is one answer to one question: a number, a piece of text or a list
// of selected options. The zero value is an unanswered question.
type Response struct {
	kind    ResponseKind
	number  float64
	text    string
	choices []string
}

func NumberResponse(v float64) Response {
	return Response{kind: ResponseNumber, number: v}
}

func TextResponse(s string) Response {
	return Response{kind: ResponseText, text: s}
}

func ChoicesResponse(choices ...string) Response {
	out := make([]string, len(choices))
	copy(out, choices)
	return Response{kind: ResponseChoices, choices: out}
}

func (r Response) Kind() ResponseKind { return r.kind }

func (r Response) Number() (float64, bool) {
	return r.number, r.kind == ResponseNumber
}

func (r Response) Text() (string, bool) {
	return r.text, r.kind == ResponseText
}

func (r Response) Choices() ([]string, bool) {
	if r.kind != ResponseChoices {
		return nil, false
	}
	return cloneStrings(r.choices), true
}

// IsMissing reports whether a required question would be considered
// unanswered: no value, an empty selection or blank text.
func (r Response) IsMissing() bool {
	switch r.kind {
	case ResponseNone:
		return true
	case ResponseText:
		return strings.TrimSpace(r.text) == ""
	case ResponseChoices:
		return len(r.choices) == 0
	default:
		return false
	}
}

func (r Response) Clone() Response {
	out := r
	if r.choices != nil {
		out.choices = cloneStrings(r.choices)
	}
	return out
}

func (r Response) String() string {
	switch r.kind {
	case ResponseNumber:
		return fmt.Sprintf("%g", r.number)
	case ResponseText:
		return r.text
	case ResponseChoices:
		return strings.Join(r.choices, ", ")
	default:
		return ""
	}
}

func (r Response) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case ResponseNumber:
		return json.Marshal(r.number)
	case ResponseText:
		return json.Marshal(r.text)
	case ResponseChoices:
		if r.choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(r.choices)
	default:
		return []byte("null"), nil
	}
}

func (r *Response) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Response{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = TextResponse(s)
	case '[':
		var choices []string
		if err := json.Unmarshal(data, &choices); err != nil {
			return fmt.Errorf("%w: list answers must contain strings", ErrInvalidResponse)
		}
		*r = ChoicesResponse(choices...)
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: unsupported answer %s", ErrInvalidResponse, string(data))
		}
		*r = NumberResponse(v)
	}
	return nil
}

// Responses maps question id to answer for one teammate.
type Responses map[string]Response

func (rs Responses) Clone() Responses {
	if rs == nil {
		return nil
	}
	out := make(Responses, len(rs))
	for k, v := range rs {
		out[k] = v.Clone()
	}
	return out
}
