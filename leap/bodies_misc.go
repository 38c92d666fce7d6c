package leap

// LoginBody is the Body of a login UpdateRequest.
type LoginBody struct {
	ContextType ContextType `json:"ContextType"`
	LoginID     string      `json:"LoginId"`
	Password    string      `json:"Password"`
}

// LeapLoginBody is the Body of a OneLoginDefinition response, carrying the
// outcome of a login attempt.
type LeapLoginBody struct {
	Href *string `json:"href,omitempty"`
}

// PingResponse reports the LEAP protocol version spoken by the processor.
type PingResponse struct {
	LEAPVersion float64 `json:"LEAPVersion"`
}

// PingBody is the Body of a OnePingResponse message.
type PingBody struct {
	PingResponse PingResponse `json:"PingResponse"`
}

// PermissionsType reports the privilege level granted to a session.
type PermissionsType struct {
	SessionRole SessionPermissions `json:"SessionRole"`
}

// ClientSettingBody is the Body of a OneClientSettingDefinition message.
type ClientSettingBody struct {
	ClientMajorVersion int              `json:"ClientMajorVersion"`
	ClientMinorVersion int              `json:"ClientMinorVersion"`
	Permissions        *PermissionsType `json:"Permissions,omitempty"`
}

// OccupancySensorStatus carries the occupancy reading from a single sensor.
type OccupancySensorStatus struct {
	Href            string        `json:"href"`
	OccupancyStatus OccupiedState `json:"OccupancyStatus"`
}

func (s OccupancySensorStatus) RelatedIDs() []int {
	if id, ok := IDFromHref(s.Href); ok {
		return []int{id}
	}
	return nil
}

// OccupancySensorBody is the Body of a OneOccupancySensorStatus message.
type OccupancySensorBody struct {
	OccupancySensorStatus OccupancySensorStatus `json:"OccupancySensorStatus"`
}

func (b OccupancySensorBody) RelatedIDs() []int { return b.OccupancySensorStatus.RelatedIDs() }

// MultiOccupancySensorBody is the Body of a MultipleOccupancySensorStatus
// message.
type MultiOccupancySensorBody struct {
	OccupancySensorStatuses []OccupancySensorStatus `json:"OccupancySensorStatuses"`
}

func (b MultiOccupancySensorBody) RelatedIDs() []int {
	var ids []int
	for _, entry := range b.OccupancySensorStatuses {
		ids = append(ids, entry.RelatedIDs()...)
	}
	return ids
}

// EmergencyStatus reports whether an emergency zone is currently active.
// It carries no href of its own; the zone is identified through the
// Emergency reference instead, so no related id is extracted.
type EmergencyStatus struct {
	Emergency   *HRef           `json:"Emergency,omitempty"`
	ActiveState *EmergencyState `json:"ActiveState,omitempty"`
}

// EmergencyBody is the Body of a OneEmergencyStatus message.
type EmergencyBody struct {
	EmergencyStatus EmergencyStatus `json:"EmergencyStatus"`
}

// MultiEmergencyBody is the Body of a MultipleEmergencyStatus message.
type MultiEmergencyBody struct {
	EmergencyStatuses []EmergencyStatus `json:"EmergencyStatuses"`
}

// LoadShedStatus reports system-wide load shedding state.
type LoadShedStatus struct {
	State              *LoadShedState `json:"State,omitempty"`
	SystemLoadShedding *HRef          `json:"SystemLoadShedding,omitempty"`
}

// LoadShedBody is the Body of a OneSystemLoadSheddingStatus message.
type LoadShedBody struct {
	SystemLoadSheddingStatus LoadShedStatus `json:"SystemLoadSheddingStatus"`
}

// ButtonEvent names the physical event a keypad button reported.
type ButtonEvent struct {
	EventType string `json:"EventType"`
}

// ButtonStatus carries the latest event from a single button.
type ButtonStatus struct {
	Href        string      `json:"href"`
	ButtonEvent ButtonEvent `json:"ButtonEvent"`
}

func (s ButtonStatus) RelatedIDs() []int {
	if id, ok := IDFromHref(s.Href); ok {
		return []int{id}
	}
	return nil
}

// ButtonStatusBody is the Body of a OneButtonStatusEvent message.
type ButtonStatusBody struct {
	ButtonStatus ButtonStatus `json:"ButtonStatus"`
}

func (b ButtonStatusBody) RelatedIDs() []int { return b.ButtonStatus.RelatedIDs() }

// MultiButtonStatusBody is the Body of a MultipleButtonStatusEvent message.
type MultiButtonStatusBody struct {
	ButtonStatuses []ButtonStatus `json:"ButtonStatuses"`
}

func (b MultiButtonStatusBody) RelatedIDs() []int {
	var ids []int
	for _, entry := range b.ButtonStatuses {
		ids = append(ids, entry.RelatedIDs()...)
	}
	return ids
}

// LEDStatus carries the on/off state of a keypad LED.
type LEDStatus struct {
	Href  string `json:"href"`
	State string `json:"State"`
}

func (s LEDStatus) RelatedIDs() []int {
	if id, ok := IDFromHref(s.Href); ok {
		return []int{id}
	}
	return nil
}

// LEDBody is the Body of a OneLEDStatus message.
type LEDBody struct {
	LEDStatus LEDStatus `json:"LEDStatus"`
}

func (b LEDBody) RelatedIDs() []int { return b.LEDStatus.RelatedIDs() }

// ExceptionBody is the Body of an ExceptionResponse communique, carrying a
// human-readable explanation of a malformed or rejected request.
type ExceptionBody struct {
	Message string `json:"Message"`
}
