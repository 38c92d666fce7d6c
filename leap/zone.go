package leap

import (
	"context"
	"sync"
)

// Zone is a single controllable output: a light, shade, fan, receptacle,
// or contact-closure-output. Definition fields describe what the zone is;
// status fields describe its current state.
type Zone struct {
	mu sync.RWMutex

	LeapID int
	owner  *Catalog

	Name                  string
	SortOrder             *int
	ControlType           *ZoneControlType
	Category              *ZoneCategory
	DeviceID              *int
	ColorTuningProperties *ColorTuningStatus
	PhaseSettings         *ZonePhaseSettings
	TuningSettings        *ZoneTuningSettings
	AssociatedAreaID      *int
	AssociatedFacade      *HRef

	SwitchedLevel     *SwitchedState
	Level             *int
	Tilt              *int
	Vibrancy          *int
	ColorTuningStatus *ColorTuningStatus
	CCOLevel          *CCOZoneLevel
	ReceptacleLevel   *ReceptacleState
	FanSpeed          *FanSpeedType
	StatusAccuracy    *string
	Availability      *AvailabilityType
}

func newZone(owner *Catalog, id int) *Zone {
	return &Zone{owner: owner, LeapID: id}
}

func (z *Zone) applyStatus(s ZoneStatus) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if s.SwitchedLevel != nil {
		z.SwitchedLevel = s.SwitchedLevel
	}
	if s.Level != nil {
		z.Level = s.Level
	}
	if s.Tilt != nil {
		z.Tilt = s.Tilt
	}
	if s.Vibrancy != nil {
		z.Vibrancy = s.Vibrancy
	}
	if s.ColorTuningStatus != nil {
		z.ColorTuningStatus = s.ColorTuningStatus
	}
	if s.CCOLevel != nil {
		z.CCOLevel = s.CCOLevel
	}
	if s.ReceptacleLevel != nil {
		z.ReceptacleLevel = s.ReceptacleLevel
	}
	if s.FanSpeed != nil {
		z.FanSpeed = s.FanSpeed
	}
	if s.StatusAccuracy != nil {
		z.StatusAccuracy = s.StatusAccuracy
	}
	if s.Availability != nil {
		z.Availability = s.Availability
	}
}

func (z *Zone) applyDefinition(d ZoneDefinition) {
	var deviceID *int
	if d.Device != nil {
		if id, ok := d.Device.ID(); ok {
			deviceID = &id
		}
	}
	var areaID *int
	if d.AssociatedArea != nil {
		if id, ok := d.AssociatedArea.ID(); ok {
			areaID = &id
		}
	}

	z.mu.Lock()
	if d.Name != nil {
		z.Name = *d.Name
	}
	if d.SortOrder != nil {
		z.SortOrder = d.SortOrder
	}
	if d.ControlType != nil {
		z.ControlType = d.ControlType
	}
	if d.Category != nil {
		z.Category = d.Category
	}
	if deviceID != nil {
		z.DeviceID = deviceID
	}
	if d.ColorTuningProperties != nil {
		z.ColorTuningProperties = d.ColorTuningProperties
	}
	if d.PhaseSettings != nil {
		z.PhaseSettings = d.PhaseSettings
	}
	if d.TuningSettings != nil {
		z.TuningSettings = d.TuningSettings
	}
	if areaID != nil {
		z.AssociatedAreaID = areaID
	}
	if d.AssociatedFacade != nil {
		z.AssociatedFacade = d.AssociatedFacade
	}
	z.mu.Unlock()

	if deviceID != nil {
		z.owner.GetOrCreateDevice(*deviceID)
	}
	if areaID != nil {
		z.owner.GetOrCreateArea(*areaID)
	}
}

// Device resolves the zone's owning device via the catalog, or nil if
// none is known yet.
func (z *Zone) Device() *Device {
	z.mu.RLock()
	id := z.DeviceID
	z.mu.RUnlock()
	if id == nil {
		return nil
	}
	return z.owner.GetOrCreateDevice(*id)
}

// Area resolves the zone's associated area via the catalog, or nil.
func (z *Zone) Area() *Area {
	z.mu.RLock()
	id := z.AssociatedAreaID
	z.mu.RUnlock()
	if id == nil {
		return nil
	}
	return z.owner.GetOrCreateArea(*id)
}

// Href is the canonical resource path for this zone.
func (z *Zone) Href() string {
	return hrefFor("zone", z.LeapID)
}

// RefreshState issues an on-demand ReadRequest for this zone's status.
func (z *Zone) RefreshState(ctx context.Context, requester Requester) error {
	msg, err := requester.RequestChecked(ctx, Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: z.Href() + "/status"},
	})
	if err != nil {
		return err
	}
	if body, ok := msg.Body.(ZoneStatusBody); ok {
		z.applyStatus(body.ZoneStatus)
	}
	return nil
}

// Command sends a CreateRequest to this zone's commandprocessor.
func (z *Zone) Command(ctx context.Context, requester Requester, cmd LeapCommand) error {
	_, err := requester.RequestChecked(ctx, Message{
		CommuniqueType: CommuniqueTypeCreateRequest,
		Header:         Header{Url: z.Href() + "/commandprocessor"},
		Body:           CommandBody{Command: cmd},
	})
	return err
}
