package leap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// wireFrame is the on-the-wire shape of a Message: Body is left untyped so
// Encode/Decode can route it through the MessageBodyType-keyed tables below.
type wireFrame struct {
	CommuniqueType CommuniqueType `json:"CommuniqueType"`
	Header         Header         `json:"Header"`
	Body           any            `json:"Body,omitempty"`
}

// Encode renders a Message to its wire form: a single CRLF-terminated JSON
// object with every null or absent field recursively omitted, matching what
// a processor expects (it rejects requests carrying explicit nulls for
// fields it doesn't recognise).
func Encode(msg Message) ([]byte, error) {
	frame := wireFrame{CommuniqueType: msg.CommuniqueType, Header: msg.Header, Body: msg.Body}

	raw, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("leap: encode: %w", err)
	}

	cleaned, _ := stripNulls(gjson.ParseBytes(raw))
	return append(cleaned, '\r', '\n'), nil
}

// stripNulls rebuilds a JSON value from the bottom up, dropping any object
// member whose value is JSON null and any member whose object became empty
// after its own nulls were dropped. The second return value is false when
// the value itself is an object left with no members, telling the caller
// to drop it too. Array elements are recursed into but never dropped, so
// indices stay stable.
func stripNulls(v gjson.Result) ([]byte, bool) {
	switch {
	case v.IsObject():
		out := []byte("{}")
		kept := false
		v.ForEach(func(key, val gjson.Result) bool {
			if val.Type == gjson.Null {
				return true
			}
			raw, keep := stripNulls(val)
			if !keep {
				return true
			}
			out, _ = sjson.SetRawBytes(out, jsonPathEscape(key.String()), raw)
			kept = true
			return true
		})
		return out, kept
	case v.IsArray():
		out := []byte("[]")
		i := 0
		v.ForEach(func(_, val gjson.Result) bool {
			raw, _ := stripNulls(val)
			out, _ = sjson.SetRawBytes(out, strconv.Itoa(i), raw)
			i++
			return true
		})
		return out, true
	default:
		return []byte(v.Raw), true
	}
}

// jsonPathEscape escapes the characters sjson treats specially in a path
// component (object keys in LEAP frames are plain identifiers, but this
// keeps the round trip safe regardless).
func jsonPathEscape(key string) string {
	if !bytes.ContainsAny([]byte(key), ".*?") {
		return key
	}
	var b bytes.Buffer
	for _, r := range key {
		if r == '.' || r == '*' || r == '?' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// rawFrame is the shape used to decode a frame before its Body has been
// routed to a concrete type.
type rawFrame struct {
	CommuniqueType CommuniqueType  `json:"CommuniqueType"`
	Header         Header          `json:"Header"`
	Body           json.RawMessage `json:"Body"`
}

// Decode parses a single wire line (with any trailing CR/LF already
// stripped) into a Message. The Body is routed to a concrete struct by
// Header.MessageBodyType when the type is known; unrecognised or absent
// body types decode to map[string]any so an older client still reads
// newer processor firmware.
func Decode(line []byte) (Message, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Message{}, errNotAnObject{line: string(trimmed)}
	}

	var frame rawFrame
	if err := json.Unmarshal(trimmed, &frame); err != nil {
		return Message{}, fmt.Errorf("leap: decode: %w", err)
	}

	body, err := decodeBody(frame.CommuniqueType, frame.Header.MessageBodyType, frame.Body)
	if err != nil {
		return Message{}, err
	}

	return Message{CommuniqueType: frame.CommuniqueType, Header: frame.Header, Body: body}, nil
}

// decodeBody routes raw to a concrete struct by bodyType. Processors are
// not required to stamp MessageBodyType on an ExceptionResponse (the error
// detail is recognisable from CommuniqueType alone), so that case is
// special-cased ahead of the generic map fallback.
func decodeBody(ct CommuniqueType, bodyType *MessageBodyType, raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	if bodyType != nil {
		if ctor, ok := bodyConstructors[*bodyType]; ok {
			target := ctor()
			if err := json.Unmarshal(raw, target); err != nil {
				return nil, fmt.Errorf("leap: decode body %s: %w", *bodyType, err)
			}
			return reflect.ValueOf(target).Elem().Interface(), nil
		}
	}

	if bodyType == nil && ct == CommuniqueTypeExceptionResponse {
		var body ExceptionBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("leap: decode body %s: %w", BodyTypeExceptionDetail, err)
		}
		return body, nil
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("leap: decode unrecognised body: %w", err)
	}
	return generic, nil
}

// bodyConstructors maps each known MessageBodyType to a factory for its Go
// representation. Adding a processor body variant means adding one entry
// here and the corresponding struct in one of the bodies_*.go files.
var bodyConstructors = map[MessageBodyType]func() any{
	BodyTypeMultipleAreaDefinition:        func() any { return &MultiAreaDefinitionBody{} },
	BodyTypeMultipleAreaStatus:            func() any { return &MultiAreaStatusBody{} },
	BodyTypeMultipleButtonStatusEvent:     func() any { return &MultiButtonStatusBody{} },
	BodyTypeMultipleDeviceDefinition:      func() any { return &MultiDeviceDefinitionBody{} },
	BodyTypeMultipleDeviceStatus:          func() any { return &MultiDeviceStatusBody{} },
	BodyTypeMultipleEmergencyStatus:       func() any { return &MultiEmergencyBody{} },
	BodyTypeMultipleOccupancySensorStatus: func() any { return &MultiOccupancySensorBody{} },
	BodyTypeMultipleZoneDefinition:        func() any { return &MultiZoneDefinitionBody{} },
	BodyTypeMultipleZoneExpandedStatus:    func() any { return &MultiZoneExpandedStatusBody{} },
	BodyTypeMultipleZoneStatus:            func() any { return &MultiZoneStatusBody{} },
	BodyTypeMultipleZoneTypeGroupStatus:   func() any { return &MultiZoneTypeGroupBody{} },
	BodyTypeOneAreaDefinition:             func() any { return &AreaDefinitionBody{} },
	BodyTypeOneAreaStatus:                 func() any { return &AreaStatusBody{} },
	BodyTypeOneButtonStatusEvent:          func() any { return &ButtonStatusBody{} },
	BodyTypeOneClientSettingDefinition:    func() any { return &ClientSettingBody{} },
	BodyTypeOneDeviceStatus:               func() any { return &DeviceStatusBody{} },
	BodyTypeOneEmergencyStatus:            func() any { return &EmergencyBody{} },
	BodyTypeOneLEDStatus:                  func() any { return &LEDBody{} },
	BodyTypeOneLoginDefinition:            func() any { return &LeapLoginBody{} },
	BodyTypeOneMasterDeviceListDefinition: func() any { return &MasterDeviceListBody{} },
	BodyTypeOneOccupancySensorStatus:      func() any { return &OccupancySensorBody{} },
	BodyTypeOnePingResponse:               func() any { return &PingBody{} },
	BodyTypeOneSystemLoadSheddingStatus:   func() any { return &LoadShedBody{} },
	BodyTypeOneZoneDefinition:             func() any { return &ZoneDefinitionBody{} },
	BodyTypeOneZoneStatus:                 func() any { return &ZoneStatusBody{} },
	BodyTypeOneZoneTypeGroupStatus:        func() any { return &ZoneTypeGroupBody{} },
	BodyTypeExceptionDetail:               func() any { return &ExceptionBody{} },
}
