package leap_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leap-go/leap/leap"
)

func TestParseResponseStatus_Success(t *testing.T) {
	status := leap.ParseResponseStatus("200 OK")
	if status.Code == nil || *status.Code != 200 {
		t.Fatalf("Code = %v, want 200", status.Code)
	}
	if status.Message != "OK" {
		t.Fatalf("Message = %q, want OK", status.Message)
	}
	if !status.IsSuccessful() {
		t.Fatal("IsSuccessful() = false, want true")
	}
	if got := status.String(); got != "200 OK" {
		t.Fatalf("String() = %q, want %q", got, "200 OK")
	}
}

func TestParseResponseStatus_NonNumericPrefix(t *testing.T) {
	status := leap.ParseResponseStatus("not a status")
	if status.Code != nil {
		t.Fatalf("Code = %v, want nil", status.Code)
	}
	if status.Message != "not a status" {
		t.Fatalf("Message = %q, want the full string", status.Message)
	}
	if status.IsSuccessful() {
		t.Fatal("IsSuccessful() = true, want false")
	}
}

func TestEncode_OmitsNullFields(t *testing.T) {
	msg := leap.Message{
		CommuniqueType: leap.CommuniqueTypeReadRequest,
		Header:         leap.Header{Url: "/server/status/ping"},
	}

	raw, err := leap.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s := string(raw)

	if !strings.HasSuffix(s, "\r\n") {
		t.Fatalf("Encode() = %q, want CRLF-terminated", s)
	}
	for _, absent := range []string{"ClientTag", "StatusCode", "Directives", "MessageBodyType", "Body"} {
		if strings.Contains(s, absent) {
			t.Errorf("Encode() = %q, unexpectedly contains %q", s, absent)
		}
	}
	if !strings.Contains(s, `"Url":"/server/status/ping"`) {
		t.Errorf("Encode() = %q, missing Url", s)
	}
}

func TestEncode_OmitsEmptyNestedObjects(t *testing.T) {
	msg := leap.Message{
		CommuniqueType: leap.CommuniqueTypeSubscribeRequest,
		Header:         leap.Header{Url: "/zone/status", Directives: &leap.Directives{}},
	}

	raw, err := leap.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(raw), "Directives") {
		t.Errorf("Encode() = %q, empty Directives object should have been dropped", raw)
	}
}

func TestDecode_Ping(t *testing.T) {
	line := []byte(`{"CommuniqueType":"ReadResponse","Header":{"Url":"/server/status/ping","ClientTag":"T","StatusCode":"200 OK"}}`)

	msg, err := leap.Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.CommuniqueType != leap.CommuniqueTypeReadResponse {
		t.Errorf("CommuniqueType = %v", msg.CommuniqueType)
	}
	if msg.Header.Tag() != "T" {
		t.Errorf("Tag() = %q, want T", msg.Header.Tag())
	}
	if msg.Header.StatusCode == nil || !msg.Header.StatusCode.IsSuccessful() {
		t.Errorf("StatusCode = %v, want successful", msg.Header.StatusCode)
	}
}

func TestDecode_ExceptionBody(t *testing.T) {
	line := []byte(`{"CommuniqueType":"ExceptionResponse","Header":{"Url":"/bad"},"Body":{"Message":"Nope"}}`)

	msg, err := leap.Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	body, ok := msg.Body.(leap.ExceptionBody)
	if !ok {
		t.Fatalf("Body = %T, want ExceptionBody", msg.Body)
	}
	if body.Message != "Nope" {
		t.Errorf("Message = %q, want Nope", body.Message)
	}
}

func TestDecode_UnrecognisedBodyType_FallsBackToMap(t *testing.T) {
	line := []byte(`{"CommuniqueType":"ReadResponse","Header":{"Url":"/future/thing","MessageBodyType":"SomethingFromTheFuture"},"Body":{"Field":42}}`)

	msg, err := leap.Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	body, ok := msg.Body.(map[string]any)
	if !ok {
		t.Fatalf("Body = %T, want map[string]any", msg.Body)
	}
	if body["Field"] != float64(42) {
		t.Errorf("Field = %v, want 42", body["Field"])
	}
}

func TestDecode_NotAnObject(t *testing.T) {
	if _, err := leap.Decode([]byte("not json")); err == nil {
		t.Fatal("Decode() error = nil, want error")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	level := 75
	original := leap.Message{
		CommuniqueType: leap.CommuniqueTypeReadResponse,
		Header: leap.Header{
			Url:             "/zone/842/status",
			MessageBodyType: bodyTypePtr(leap.BodyTypeOneZoneStatus),
		},
		Body: leap.ZoneStatusBody{
			ZoneStatus: leap.ZoneStatus{Href: "/zone/842/status", Level: &level},
		},
	}

	raw, err := leap.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := leap.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func bodyTypePtr(t leap.MessageBodyType) *leap.MessageBodyType { return &t }
