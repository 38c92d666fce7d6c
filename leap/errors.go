package leap

import "fmt"

// ErrSessionDisconnected is returned to any caller awaiting a response when
// the underlying TLS stream closes (or is closed) before a response tagged
// with their ClientTag arrives.
type ErrSessionDisconnected struct{}

func (ErrSessionDisconnected) Error() string {
	return "leap: session disconnected while awaiting response"
}

// ErrSessionResponse is returned by RequestChecked when the peer answers
// with a non-2xx StatusCode. It carries the original response so the
// caller can inspect the code and body.
type ErrSessionResponse struct {
	Response *Message
}

func (e *ErrSessionResponse) Error() string {
	status := "no status"
	if e.Response != nil && e.Response.Header.StatusCode != nil {
		status = e.Response.Header.StatusCode.String()
	}
	return fmt.Sprintf("leap: response error: %s", status)
}

// errNotAnObject indicates a received line did not decode as a JSON object.
type errNotAnObject struct {
	line string
}

func (e errNotAnObject) Error() string {
	return fmt.Sprintf("leap: line is not a JSON object: %q", e.line)
}
