package leap

// BatteryStatus describes the battery health of a battery-powered device.
type BatteryStatus struct {
	LevelState BatteryState `json:"LevelState"`
}

// Transfers counts failed firmware transfer attempts.
type Transfers struct {
	Count int `json:"Count"`
}

// DeviceStatus carries the mutable runtime state of a Device.
type DeviceStatus struct {
	Href            string            `json:"href"`
	Availability    *AvailabilityType `json:"Availability,omitempty"`
	BatteryStatus   *BatteryStatus    `json:"BatteryStatus,omitempty"`
	FailedTransfers *Transfers        `json:"FailedTransfers,omitempty"`
}

func (s DeviceStatus) RelatedIDs() []int {
	if id, ok := IDFromHref(s.Href); ok {
		return []int{id}
	}
	return nil
}

// FirmwareName names a firmware package or image.
type FirmwareName struct {
	DisplayName string `json:"DisplayName"`
}

// FirmwareInstalled is the install timestamp of a firmware image, split into
// fields the way the processor reports it rather than as a single string.
type FirmwareInstalled struct {
	Year   int    `json:"Year"`
	Month  int    `json:"Month"`
	Day    int    `json:"Day"`
	Hour   int    `json:"Hour"`
	Minute int    `json:"Minute"`
	Second int    `json:"Second"`
	Utc    string `json:"Utc"`
}

// FirmwareImage describes the firmware currently running on a device.
type FirmwareImage struct {
	Firmware  FirmwareName      `json:"Firmware"`
	Installed FirmwareInstalled `json:"Installed"`
}

// DeviceFirmwarePackage names the firmware package assigned to a device.
type DeviceFirmwarePackage struct {
	Package FirmwareName `json:"Package"`
}

// DatabaseInfo names a database a device exposes or depends on.
type DatabaseInfo struct {
	Href string `json:"href"`
	Type string `json:"Type"`
}

// LinkInfo names a link owned by a device (e.g. a wired or RF trunk).
type LinkInfo struct {
	Href     string `json:"href"`
	LinkType string `json:"LinkType"`
}

// DeviceClass carries the device's raw class byte, as reported on the wire.
type DeviceClass struct {
	HexadecimalEncoding string `json:"HexadecimalEncoding"`
}

// DeviceDefinition carries the static identity fields of a Device.
type DeviceDefinition struct {
	Href                  string                  `json:"href"`
	Name                  *string                 `json:"Name,omitempty"`
	Parent                *HRef                   `json:"Parent,omitempty"`
	SerialNumber          *int                    `json:"SerialNumber,omitempty"`
	ModelNumber           *string                 `json:"ModelNumber,omitempty"`
	DeviceType            *string                 `json:"DeviceType,omitempty"`
	DeviceRules           []HRef                  `json:"DeviceRules,omitempty"`
	FirmwareImage         *FirmwareImage          `json:"FirmwareImage,omitempty"`
	DeviceFirmwarePackage *DeviceFirmwarePackage  `json:"DeviceFirmwarePackage,omitempty"`
	Databases             []DatabaseInfo          `json:"Databases,omitempty"`
	OwnedLinks            []LinkInfo              `json:"OwnedLinks,omitempty"`
	AddressedState        *string                 `json:"AddressedState,omitempty"`
	LinkNodes             []HRef                  `json:"LinkNodes,omitempty"`
	IsThisDevice          *bool                   `json:"IsThisDevice,omitempty"`
	NetworkInterfaces     []map[string]string     `json:"NetworkInterfaces,omitempty"`
	DeviceClass           *DeviceClass            `json:"DeviceClass,omitempty"`
	AssociatedArea        *HRef                   `json:"AssociatedArea,omitempty"`
	LocalZones            []HRef                  `json:"LocalZones,omitempty"`
}

func (d DeviceDefinition) RelatedIDs() []int {
	if id, ok := IDFromHref(d.Href); ok {
		return []int{id}
	}
	return nil
}

// DeviceStatusBody is the Body of a OneDeviceStatus message.
type DeviceStatusBody struct {
	DeviceStatus DeviceStatus `json:"DeviceStatus"`
}

func (b DeviceStatusBody) RelatedIDs() []int { return b.DeviceStatus.RelatedIDs() }

// MultiDeviceStatusBody is the Body of a MultipleDeviceStatus message.
type MultiDeviceStatusBody struct {
	DeviceStatuses []DeviceStatus `json:"DeviceStatuses"`
}

func (b MultiDeviceStatusBody) RelatedIDs() []int {
	var ids []int
	for _, entry := range b.DeviceStatuses {
		ids = append(ids, entry.RelatedIDs()...)
	}
	return ids
}

// MultiDeviceDefinitionBody is the Body of a MultipleDeviceDefinition message.
type MultiDeviceDefinitionBody struct {
	Devices []DeviceDefinition `json:"Devices"`
}

func (b MultiDeviceDefinitionBody) RelatedIDs() []int {
	var ids []int
	for _, entry := range b.Devices {
		ids = append(ids, entry.RelatedIDs()...)
	}
	return ids
}

// ProcessorNetworkInterface is one network interface of the master
// (connected) processor, as reported in a MasterDeviceListDefinition.
type ProcessorNetworkInterface struct {
	MACAddress     string         `json:"MACAddress"`
	IPv4Properties IPv4Properties `json:"IPv4Properties"`
	IPv6Properties IPv6Properties `json:"IPv6Properties"`
}

type IPv4Properties struct {
	Type       string  `json:"Type"`
	IPAddress  *string `json:"IPAddress,omitempty"`
	SubnetMask *string `json:"SubnetMask,omitempty"`
	Gateway    *string `json:"Gateway,omitempty"`
	DNS1       *string `json:"DNSServer1,omitempty"`
	DNS2       *string `json:"DNSServer2,omitempty"`
	DNS3       *string `json:"DNSServer3,omitempty"`
}

type IPv6Properties struct {
	UniqueLocalUnicastAddresses []string `json:"UniqueLocalUnicastAddresses,omitempty"`
}

// IPL identifies the processor within the installation.
type IPL struct {
	ProcessorID int `json:"ProcessorId"`
}

// ProcessorWhiteList carries the signed JWT whitelist the processor serves.
type ProcessorWhiteList struct {
	JWT string `json:"Jwt"`
}

// ProcessorDeviceDefinition describes the currently-connected processor,
// returned from a read of /device?where=IsThisDevice:true.
type ProcessorDeviceDefinition struct {
	Href              string                      `json:"href"`
	SerialNumber      int                         `json:"SerialNumber"`
	NetworkInterfaces []ProcessorNetworkInterface `json:"NetworkInterfaces,omitempty"`
	IPL               IPL                         `json:"IPL"`
}

func (d ProcessorDeviceDefinition) RelatedIDs() []int {
	if id, ok := IDFromHref(d.Href); ok {
		return []int{id}
	}
	return nil
}

// MasterDeviceListBody is the Body of a OneMasterDeviceListDefinition
// message, enumerating every device the processor knows about along with
// its signed whitelist.
type MasterDeviceListBody struct {
	Devices         []ProcessorDeviceDefinition `json:"Devices"`
	SignedWhiteList ProcessorWhiteList          `json:"SignedWhiteList"`
}

func (b MasterDeviceListBody) RelatedIDs() []int {
	var ids []int
	for _, entry := range b.Devices {
		ids = append(ids, entry.RelatedIDs()...)
	}
	return ids
}
