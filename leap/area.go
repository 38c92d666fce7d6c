package leap

import (
	"context"
	"sync"
)

// Area is a node in the processor's area tree (a room, or a grouping of
// rooms). Fields are populated sparsely as status/definition messages
// arrive; a freshly get-or-created Area has only LeapID set.
type Area struct {
	mu sync.RWMutex

	LeapID int
	owner  *Catalog

	Name                      string
	ParentID                  *int
	SortOrder                 int
	IsLeaf                    bool
	OccupancyStatus           *OccupiedState
	CurrentScene              *HRef
	Level                     *int
	InstantaneousPower        *int
	InstantaneousMaxPower     *int
	AssociatedZones           []HRef
	AssociatedControlStations []HRef
}

func newArea(owner *Catalog, id int) *Area {
	return &Area{owner: owner, LeapID: id}
}

// applyStatus merges the non-nil fields of an AreaStatus into the area.
func (a *Area) applyStatus(s AreaStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s.CurrentScene != nil {
		a.CurrentScene = s.CurrentScene
	}
	if s.Level != nil {
		a.Level = s.Level
	}
	if s.OccupancyStatus != nil {
		a.OccupancyStatus = s.OccupancyStatus
	}
	if s.InstantaneousPower != nil {
		a.InstantaneousPower = s.InstantaneousPower
	}
	if s.InstantaneousMaxPower != nil {
		a.InstantaneousMaxPower = s.InstantaneousMaxPower
	}
}

// applyDefinition merges the non-nil fields of an AreaDefinition into the
// area; fields the incoming definition omits leave prior state intact.
func (a *Area) applyDefinition(d AreaDefinition) {
	a.mu.Lock()
	if d.Name != nil {
		a.Name = *d.Name
	}
	if d.SortOrder != nil {
		a.SortOrder = *d.SortOrder
	}
	if d.IsLeaf != nil {
		a.IsLeaf = *d.IsLeaf
	}
	if d.Parent != nil {
		if id, ok := d.Parent.ID(); ok {
			a.ParentID = &id
		}
	}
	if d.AssociatedZones != nil {
		a.AssociatedZones = d.AssociatedZones
	}
	if d.AssociatedControlStations != nil {
		a.AssociatedControlStations = d.AssociatedControlStations
	}
	a.mu.Unlock()

	if d.Parent != nil {
		if id, ok := d.Parent.ID(); ok {
			a.owner.GetOrCreateArea(id)
		}
	}
}

// Parent returns the owning area, or nil at the root (no parent known). A
// parent that hasn't been enumerated yet is get-or-created in the catalog.
func (a *Area) Parent() *Area {
	a.mu.RLock()
	parentID := a.ParentID
	a.mu.RUnlock()
	if parentID == nil {
		return nil
	}
	return a.owner.GetOrCreateArea(*parentID)
}

// Children returns every area in the catalog whose ParentID is this area,
// a reverse lookup since the catalog stores only forward (child→parent)
// references.
func (a *Area) Children() []*Area {
	var children []*Area
	for _, candidate := range a.owner.Areas() {
		candidate.mu.RLock()
		isChild := candidate.ParentID != nil && *candidate.ParentID == a.LeapID
		candidate.mu.RUnlock()
		if isChild {
			children = append(children, candidate)
		}
	}
	return children
}

// Href is the canonical resource path for this area.
func (a *Area) Href() string {
	return areaHref(a.LeapID)
}

// RefreshState issues an on-demand ReadRequest for this area's status and
// applies the result, rather than waiting for the next subscription push.
func (a *Area) RefreshState(ctx context.Context, requester Requester) error {
	msg, err := requester.RequestChecked(ctx, Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: a.Href() + "/status"},
	})
	if err != nil {
		return err
	}
	if body, ok := msg.Body.(AreaStatusBody); ok {
		a.applyStatus(body.AreaStatus)
	}
	return nil
}

// RefreshDefinition issues an on-demand ReadRequest for this area's
// definition and applies the result. The body is a single
// OneAreaDefinition entity, not a sequence.
func (a *Area) RefreshDefinition(ctx context.Context, requester Requester) error {
	msg, err := requester.RequestChecked(ctx, Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: a.Href()},
	})
	if err != nil {
		return err
	}
	if body, ok := msg.Body.(AreaDefinitionBody); ok {
		a.applyDefinition(body.Area)
	}
	return nil
}

// GetDevices issues a ReadRequest for every device associated with this
// area and get-or-creates them in the catalog.
func (a *Area) GetDevices(ctx context.Context, requester Requester) ([]*Device, error) {
	msg, err := requester.RequestChecked(ctx, Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: "/device?where=AssociatedArea.href:\"" + a.Href() + "\""},
	})
	if err != nil {
		return nil, err
	}
	return a.owner.applyDeviceMessage(msg), nil
}

// GetZones issues a ReadRequest for the expanded status of every zone
// associated with this area (each entry carries both status and
// definition) and get-or-creates them in the catalog.
func (a *Area) GetZones(ctx context.Context, requester Requester) ([]*Zone, error) {
	msg, err := requester.RequestChecked(ctx, Message{
		CommuniqueType: CommuniqueTypeReadRequest,
		Header:         Header{Url: a.Href() + "/associatedzone/status/expanded"},
	})
	if err != nil {
		return nil, err
	}
	return a.owner.applyZoneMessage(msg), nil
}

func areaHref(id int) string {
	return hrefFor("area", id)
}
