package leap

import (
	"context"
	"sync"
)

// Device is a physical Lutron component: a processor, a dimmer module, a
// sensor, a keypad, or similar. Devices own zero or more Zones and belong
// to at most one Area.
type Device struct {
	mu sync.RWMutex

	LeapID int
	owner  *Catalog

	Name                   string
	ParentID               *int
	SerialNumber           *int
	ModelNumber            *string
	DeviceType             *string
	DeviceRules            []HRef
	FirmwareImage          *FirmwareImage
	DeviceFirmwarePackage  *DeviceFirmwarePackage
	Databases              []DatabaseInfo
	OwnedLinks             []LinkInfo
	AddressedState         *string
	LinkNodeIDs            []int
	IsThisDevice           *bool
	NetworkInterfaces      []map[string]string
	DeviceClass            *DeviceClass
	AssociatedAreaID       *int
	LocalZoneIDs           []int

	Availability    *AvailabilityType
	BatteryStatus   *BatteryStatus
	FailedTransfers *Transfers

	// ProcessorID is only populated for entries read from a master device
	// list (/project/masterdevicelist), which reports a different
	// (narrower) shape than /device; such entries also set SerialNumber.
	ProcessorID *int
}

func newDevice(owner *Catalog, id int) *Device {
	return &Device{owner: owner, LeapID: id}
}

func (d *Device) applyStatus(s DeviceStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.Availability != nil {
		d.Availability = s.Availability
	}
	if s.BatteryStatus != nil {
		d.BatteryStatus = s.BatteryStatus
	}
	if s.FailedTransfers != nil {
		d.FailedTransfers = s.FailedTransfers
	}
}

func (d *Device) applyDefinition(def DeviceDefinition) {
	var areaID *int
	if def.AssociatedArea != nil {
		if id, ok := def.AssociatedArea.ID(); ok {
			areaID = &id
		}
	}
	var linkNodes []int
	for _, ref := range def.LinkNodes {
		if id, ok := ref.ID(); ok {
			linkNodes = append(linkNodes, id)
		}
	}
	var localZones []int
	for _, ref := range def.LocalZones {
		if id, ok := ref.ID(); ok {
			localZones = append(localZones, id)
		}
	}

	d.mu.Lock()
	if def.Name != nil {
		d.Name = *def.Name
	}
	if def.Parent != nil {
		if id, ok := def.Parent.ID(); ok {
			d.ParentID = &id
		}
	}
	if def.SerialNumber != nil {
		d.SerialNumber = def.SerialNumber
	}
	if def.ModelNumber != nil {
		d.ModelNumber = def.ModelNumber
	}
	if def.DeviceType != nil {
		d.DeviceType = def.DeviceType
	}
	if def.DeviceRules != nil {
		d.DeviceRules = def.DeviceRules
	}
	if def.FirmwareImage != nil {
		d.FirmwareImage = def.FirmwareImage
	}
	if def.DeviceFirmwarePackage != nil {
		d.DeviceFirmwarePackage = def.DeviceFirmwarePackage
	}
	if def.Databases != nil {
		d.Databases = def.Databases
	}
	if def.OwnedLinks != nil {
		d.OwnedLinks = def.OwnedLinks
	}
	if def.AddressedState != nil {
		d.AddressedState = def.AddressedState
	}
	if linkNodes != nil {
		d.LinkNodeIDs = linkNodes
	}
	if def.IsThisDevice != nil {
		d.IsThisDevice = def.IsThisDevice
	}
	if def.NetworkInterfaces != nil {
		d.NetworkInterfaces = def.NetworkInterfaces
	}
	if def.DeviceClass != nil {
		d.DeviceClass = def.DeviceClass
	}
	if areaID != nil {
		d.AssociatedAreaID = areaID
	}
	if localZones != nil {
		d.LocalZoneIDs = localZones
	}
	d.mu.Unlock()

	if areaID != nil {
		d.owner.GetOrCreateArea(*areaID)
	}
	for _, id := range localZones {
		d.owner.GetOrCreateZone(id)
	}
}

// applyProcessorDefinition merges the narrower shape reported for a
// master-device-list entry, not the full /device definition shape; only
// its serial number and processor id are taken over.
func (d *Device) applyProcessorDefinition(pd ProcessorDeviceDefinition) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.SerialNumber = &pd.SerialNumber
	id := pd.IPL.ProcessorID
	d.ProcessorID = &id
}

// Area resolves the device's associated area via the catalog, or nil.
func (d *Device) Area() *Area {
	d.mu.RLock()
	id := d.AssociatedAreaID
	d.mu.RUnlock()
	if id == nil {
		return nil
	}
	return d.owner.GetOrCreateArea(*id)
}

// LocalZones resolves every zone local to this device via the catalog.
func (d *Device) LocalZones() []*Zone {
	d.mu.RLock()
	ids := d.LocalZoneIDs
	d.mu.RUnlock()
	zones := make([]*Zone, 0, len(ids))
	for _, id := range ids {
		zones = append(zones, d.owner.GetOrCreateZone(id))
	}
	return zones
}

// Href is the canonical resource path for this device.
func (d *Device) Href() string {
	return hrefFor("device", d.LeapID)
}

// Reboot sends CommandType=Reboot to this device's commandprocessor.
func (d *Device) Reboot(ctx context.Context, requester Requester) error {
	_, err := requester.RequestChecked(ctx, Message{
		CommuniqueType: CommuniqueTypeCreateRequest,
		Header:         Header{Url: d.Href() + "/commandprocessor"},
		Body:           CommandBody{Command: LeapCommand{CommandType: CommandTypeReboot}},
	})
	return err
}
