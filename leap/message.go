package leap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ResponseStatus is the parsed form of the wire's "<code> <message>" status
// string, e.g. "200 OK". Code is nil if the prefix before the first space
// did not parse as an integer; the full string becomes the message in that
// case.
type ResponseStatus struct {
	Code    *int
	Message string
}

// ParseResponseStatus splits a wire status string into its code and
// message parts.
func ParseResponseStatus(s string) ResponseStatus {
	space := strings.IndexByte(s, ' ')
	if space == -1 {
		return ResponseStatus{Message: s}
	}

	code, err := strconv.Atoi(s[:space])
	if err != nil {
		return ResponseStatus{Message: s}
	}

	return ResponseStatus{Code: &code, Message: s[space+1:]}
}

// String renders the status back to its wire form.
func (s ResponseStatus) String() string {
	if s.Code == nil {
		return s.Message
	}
	return fmt.Sprintf("%d %s", *s.Code, s.Message)
}

// IsSuccessful reports whether the code is in [200, 300).
func (s ResponseStatus) IsSuccessful() bool {
	return s.Code != nil && *s.Code >= 200 && *s.Code < 300
}

// MarshalJSON renders the status as its wire string form ("200 OK"),
// since the processor sends/expects a single string, not an object.
func (s ResponseStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the wire string form back into Code/Message.
func (s *ResponseStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseResponseStatus(raw)
	return nil
}

// Directives carries per-request hints to the processor.
type Directives struct {
	SuppressMessageBody *bool `json:"SuppressMessageBody,omitempty"`
}

// Header is the envelope common to every LEAP frame.
type Header struct {
	Url             string           `json:"Url"`
	ClientTag       *string          `json:"ClientTag,omitempty"`
	StatusCode      *ResponseStatus  `json:"StatusCode,omitempty"`
	Directives      *Directives      `json:"Directives,omitempty"`
	MessageBodyType *MessageBodyType `json:"MessageBodyType,omitempty"`
}

// Tag returns the header's ClientTag, or "" if unset.
func (h Header) Tag() string {
	if h.ClientTag == nil {
		return ""
	}
	return *h.ClientTag
}

// Message is one LEAP frame: a CommuniqueType, a Header, and a Body whose
// concrete shape is selected by Header.MessageBodyType.
type Message struct {
	CommuniqueType CommuniqueType
	Header         Header
	Body           any
}

// RelatedIDs returns the ids this message pertains to: the id embedded in
// the header's Url, followed by any ids the Body contributes (for bodies
// that are themselves collections of entries, e.g. MultipleZoneStatus).
func (m Message) RelatedIDs() []int {
	var ids []int

	if id, ok := IDFromHref(m.Header.Url); ok {
		ids = append(ids, id)
	}

	if related, ok := m.Body.(interface{ RelatedIDs() []int }); ok {
		ids = append(ids, related.RelatedIDs()...)
	}

	return ids
}
