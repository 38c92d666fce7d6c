package leap

// This file collects the pure message/command constructors for the
// requests the session and its callers issue most often. Each builder
// returns a Message ready to hand to Protocol.Request/Subscribe, or a
// LeapCommand ready to wrap in a CommandBody.

// LoginRequest builds the UpdateRequest that authenticates a session.
func LoginRequest(username, password string) Message {
	return Message{
		CommuniqueType: CommuniqueTypeUpdateRequest,
		Header:         Header{Url: "/login"},
		Body: LoginBody{
			ContextType: ContextTypeApplication,
			LoginID:     username,
			Password:    password,
		},
	}
}

// PingRequest builds the keepalive ReadRequest.
func PingRequest() Message {
	return Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: "/server/status/ping"},
	}
}

// ClientSettingRequest builds the ReadRequest that reports the session's
// negotiated LEAP version and permission level.
func ClientSettingRequest() Message {
	return Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: "/clientsetting"},
	}
}

// suppressed builds a Directives that asks the processor to omit the
// (potentially very large) initial body of a subscribe response.
func suppressed() *Directives {
	t := true
	return &Directives{SuppressMessageBody: &t}
}

// SubscribeAllZonesStatus builds the bootstrap zone-status subscription,
// with the initial body suppressed since a large installation's zone
// count would otherwise dominate the first response.
func SubscribeAllZonesStatus() Message {
	return Message{
		CommuniqueType: CommuniqueTypeSubscribeRequest,
		Header:         Header{Url: "/zone/status", Directives: suppressed()},
	}
}

// SubscribeAllAreasStatus builds the bootstrap area-status subscription.
func SubscribeAllAreasStatus() Message {
	return Message{
		CommuniqueType: CommuniqueTypeSubscribeRequest,
		Header:         Header{Url: "/area/status"},
	}
}

// SubscribeAllOccupancyStatus builds the bootstrap occupancy-group-status
// subscription.
func SubscribeAllOccupancyStatus() Message {
	return Message{
		CommuniqueType: CommuniqueTypeSubscribeRequest,
		Header:         Header{Url: "/occupancygroup/status"},
	}
}

// SubscribeAllZoneTypeGroupStatus builds a subscription to every
// zone-type-group's aggregate status (e.g. "all lights in area X").
func SubscribeAllZoneTypeGroupStatus() Message {
	return Message{
		CommuniqueType: CommuniqueTypeSubscribeRequest,
		Header:         Header{Url: "/zonetypegroup/status"},
	}
}

// SubscribeAllLoadshedStatus builds the optional system load-shedding
// subscription. Not issued during bootstrap; callers opt in explicitly.
func SubscribeAllLoadshedStatus() Message {
	return Message{
		CommuniqueType: CommuniqueTypeSubscribeRequest,
		Header:         Header{Url: "/system/loadshedding/status"},
	}
}

// SubscribeAllEmergencyStatus builds the optional emergency-zone
// subscription. Not issued during bootstrap; callers opt in explicitly.
func SubscribeAllEmergencyStatus() Message {
	return Message{
		CommuniqueType: CommuniqueTypeSubscribeRequest,
		Header:         Header{Url: "/emergency/status"},
	}
}

// ReadConnectedProcessor builds the bootstrap query for the processor the
// session is directly talking to.
func ReadConnectedProcessor() Message {
	return Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: "/device?where=IsThisDevice:true"},
	}
}

// ReadOtherDevices builds the bootstrap query for every device other than
// the connected processor.
func ReadOtherDevices() Message {
	return Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: "/device?where=IsThisDevice:false"},
	}
}

// ReadDevicesByArea builds a query for every device associated with the
// area at areaHref (e.g. "/area/5").
func ReadDevicesByArea(areaHref string) Message {
	return Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: "/device?where=AssociatedArea.href:\"" + areaHref + "\""},
	}
}

// MasterDeviceListRequest builds the CreateRequest that enumerates every
// device the processor knows about, along with its signed whitelist.
func MasterDeviceListRequest() Message {
	return Message{
		CommuniqueType: CommuniqueTypeCreateRequest,
		Header:         Header{Url: "/project/masterdevicelist"},
	}
}

// SwitchedLevelCommand turns a switched zone on or off.
func SwitchedLevelCommand(on bool) LeapCommand {
	level := SwitchedStateOff
	if on {
		level = SwitchedStateOn
	}
	return LeapCommand{
		CommandType:             CommandTypeGoToSwitchedLevel,
		SwitchedLevelParameters: &SwitchedLevelParameters{SwitchedLevel: level},
	}
}

// DimmedLevelCommand sets a dimmed zone's level (0-100), optionally
// fading over fadeTime (a duration string such as "00:00:02").
func DimmedLevelCommand(level int, fadeTime *string) LeapCommand {
	return LeapCommand{
		CommandType:           CommandTypeGoToDimmedLevel,
		DimmedLevelParameters: &DimmedLevelParameters{Level: level, FadeTime: fadeTime},
	}
}

// ShadeLevelCommand sets a shade zone's level (0-100).
func ShadeLevelCommand(level int) LeapCommand {
	return LeapCommand{
		CommandType:          CommandTypeGoToShadeLevel,
		ShadeLevelParameters: &ShadeLevelParameters{Level: level},
	}
}

// ShadeWithTiltLevelCommand sets a shade-with-tilt zone's level and tilt.
func ShadeWithTiltLevelCommand(level, tilt int) LeapCommand {
	return LeapCommand{
		CommandType:                  CommandTypeGoToShadeLevelWithTilt,
		ShadeWithTiltLevelParameters: &ShadeWithTiltLevelParameters{Level: level, Tilt: tilt},
	}
}

// SpectrumTuningLevelCommand sets a tunable-color zone's level and color
// together; any of its arguments may be left nil to leave that aspect
// unchanged.
func SpectrumTuningLevelCommand(level, vibrancy *int, fadeTime *string, color *ColorTuningStatus) LeapCommand {
	return LeapCommand{
		CommandType: CommandTypeGoToSpectrumTuningLvl,
		SpectrumTuningLevelParameters: &SpectrumTuningLevelParameters{
			Level:             level,
			Vibrancy:          vibrancy,
			FadeTime:          fadeTime,
			ColorTuningStatus: color,
		},
	}
}

// CCOLevelCommand opens or closes a contact-closure-output zone.
func CCOLevelCommand(open bool) LeapCommand {
	level := CCOZoneLevelClosed
	if open {
		level = CCOZoneLevelOpen
	}
	return LeapCommand{
		CommandType:         CommandTypeGoToCCOLevel,
		CCOLevelParameters:  &CCOLevelParameters{CCOLevel: level},
	}
}

// ReceptacleLevelCommand turns a switched receptacle zone on or off.
func ReceptacleLevelCommand(on bool) LeapCommand {
	level := ReceptacleStateOff
	if on {
		level = ReceptacleStateOn
	}
	return LeapCommand{
		CommandType:               CommandTypeGoToReceptacleLevel,
		ReceptacleLevelParameters: &ReceptacleLevelParameters{ReceptacleLevel: level},
	}
}

// FanSpeedCommand sets a fan zone to a discrete speed.
func FanSpeedCommand(speed FanSpeedType) LeapCommand {
	return LeapCommand{
		CommandType:        CommandTypeGoToFanSpeed,
		FanSpeedParameters: &FanSpeedParameters{FanSpeed: speed},
	}
}

// GroupLightingLevelCommand sets every light zone in a group together;
// any argument may be left nil to leave that aspect unchanged.
func GroupLightingLevelCommand(level *int, vibrancy *VibrancyStatus, fadeTime *string, color *ColorTuningStatus) LeapCommand {
	return LeapCommand{
		CommandType: CommandTypeGoToGroupLightingLevel,
		GroupLightingLevelParameters: &GroupLightingLevelParameters{
			Level:             level,
			VibrancyStatus:    vibrancy,
			FadeTime:          fadeTime,
			ColorTuningStatus: color,
		},
	}
}

// GoToSceneCommand recalls a scene on an area.
func GoToSceneCommand(sceneHref string) LeapCommand {
	return LeapCommand{
		CommandType:         CommandTypeGoToScene,
		GoToSceneParameters: &GoToSceneParameters{CurrentScene: HRef{Href: sceneHref}},
	}
}

// RebootCommand reboots the device or processor it is sent to.
func RebootCommand() LeapCommand {
	return LeapCommand{CommandType: CommandTypeReboot}
}
