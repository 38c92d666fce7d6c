package leap

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
)

// Requester is the subset of Session's public surface the model entities
// need to issue their own on-demand requests (RefreshState, GetDevices,
// ...). Session satisfies it; tests can substitute a fake.
type Requester interface {
	RequestChecked(ctx context.Context, msg Message) (Message, error)
}

func hrefFor(kind string, id int) string {
	return "/" + kind + "/" + strconv.Itoa(id)
}

// Catalog is the in-memory, session-scoped store of every Area, Device,
// and Zone the session has learned about. It is mutated from the read
// loop (subscription pushes), from Session's bootstrap, and from the
// entity helpers (RefreshState, GetDevices, ...) on the caller's
// goroutine; the catalog's own mutex guards its maps and each entity's
// RWMutex guards that entity's fields.
type Catalog struct {
	mu      sync.RWMutex
	areas   map[int]*Area
	zones   map[int]*Zone
	devices map[int]*Device
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		areas:   make(map[int]*Area),
		zones:   make(map[int]*Zone),
		devices: make(map[int]*Device),
	}
}

// GetOrCreateArea returns the Area for id, creating an empty one on first
// reference. Repeated calls with the same id return the same pointer.
func (c *Catalog) GetOrCreateArea(id int) *Area {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.areas[id]
	if !ok {
		a = newArea(c, id)
		c.areas[id] = a
	}
	return a
}

// GetOrCreateZone returns the Zone for id, creating an empty one on first
// reference.
func (c *Catalog) GetOrCreateZone(id int) *Zone {
	c.mu.Lock()
	defer c.mu.Unlock()
	z, ok := c.zones[id]
	if !ok {
		z = newZone(c, id)
		c.zones[id] = z
	}
	return z
}

// GetOrCreateDevice returns the Device for id, creating an empty one on
// first reference.
func (c *Catalog) GetOrCreateDevice(id int) *Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.devices[id]
	if !ok {
		d = newDevice(c, id)
		c.devices[id] = d
	}
	return d
}

// Areas returns a snapshot slice of every known area.
func (c *Catalog) Areas() []*Area {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Area, 0, len(c.areas))
	for _, a := range c.areas {
		out = append(out, a)
	}
	return out
}

// Zones returns a snapshot slice of every known zone.
func (c *Catalog) Zones() []*Zone {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Zone, 0, len(c.zones))
	for _, z := range c.zones {
		out = append(out, z)
	}
	return out
}

// Devices returns a snapshot slice of every known device.
func (c *Catalog) Devices() []*Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Device, 0, len(c.devices))
	for _, d := range c.devices {
		out = append(out, d)
	}
	return out
}

// HandleResponse routes msg to the Area, Device, or Zone handler selected
// by its MessageBodyType, applying whatever update it carries. Messages
// whose body type isn't one of the recognized model-affecting variants
// are ignored here (they may still matter to a subscription callback
// that invoked HandleResponse in the first place).
func (c *Catalog) HandleResponse(msg Message) {
	switch msg.Body.(type) {
	case AreaStatusBody, MultiAreaStatusBody, AreaDefinitionBody, MultiAreaDefinitionBody:
		c.applyAreaMessage(msg)
	case DeviceStatusBody, MultiDeviceStatusBody, MultiDeviceDefinitionBody, MasterDeviceListBody:
		c.applyDeviceMessage(msg)
	case ZoneStatusBody, MultiZoneStatusBody, ZoneDefinitionBody, MultiZoneDefinitionBody,
		ZoneTypeGroupBody, MultiZoneTypeGroupBody, MultiZoneExpandedStatusBody:
		c.applyZoneMessage(msg)
	}
}

func (c *Catalog) applyAreaMessage(msg Message) []*Area {
	var updated []*Area

	apply := func(status *AreaStatus, def *AreaDefinition) {
		href := ""
		if status != nil {
			href = status.Href
		} else if def != nil {
			href = def.Href
		}
		id, ok := IDFromHref(href)
		if !ok {
			slog.Warn("leap: area message missing id", "href", href)
			return
		}
		a := c.GetOrCreateArea(id)
		if status != nil {
			a.applyStatus(*status)
		}
		if def != nil {
			a.applyDefinition(*def)
		}
		updated = append(updated, a)
	}

	switch body := msg.Body.(type) {
	case AreaStatusBody:
		apply(&body.AreaStatus, nil)
	case MultiAreaStatusBody:
		for i := range body.AreaStatuses {
			apply(&body.AreaStatuses[i], nil)
		}
	case AreaDefinitionBody:
		apply(nil, &body.Area)
	case MultiAreaDefinitionBody:
		for i := range body.Areas {
			apply(nil, &body.Areas[i])
		}
	}

	return updated
}

func (c *Catalog) applyDeviceMessage(msg Message) []*Device {
	var updated []*Device

	applyStatus := func(status DeviceStatus) {
		id, ok := IDFromHref(status.Href)
		if !ok {
			slog.Warn("leap: device status missing id", "href", status.Href)
			return
		}
		d := c.GetOrCreateDevice(id)
		d.applyStatus(status)
		updated = append(updated, d)
	}
	applyDefinition := func(def DeviceDefinition) {
		id, ok := IDFromHref(def.Href)
		if !ok {
			slog.Warn("leap: device definition missing id", "href", def.Href)
			return
		}
		d := c.GetOrCreateDevice(id)
		d.applyDefinition(def)
		updated = append(updated, d)
	}

	switch body := msg.Body.(type) {
	case DeviceStatusBody:
		applyStatus(body.DeviceStatus)
	case MultiDeviceStatusBody:
		for _, s := range body.DeviceStatuses {
			applyStatus(s)
		}
	case MultiDeviceDefinitionBody:
		for _, d := range body.Devices {
			applyDefinition(d)
		}
	case MasterDeviceListBody:
		for _, pd := range body.Devices {
			id, ok := IDFromHref(pd.Href)
			if !ok {
				continue
			}
			d := c.GetOrCreateDevice(id)
			d.applyProcessorDefinition(pd)
			updated = append(updated, d)
		}
	}

	return updated
}

func (c *Catalog) applyZoneMessage(msg Message) []*Zone {
	var updated []*Zone

	applyStatus := func(status ZoneStatus) {
		id, ok := IDFromHref(status.Href)
		if !ok {
			slog.Warn("leap: zone status missing id", "href", status.Href)
			return
		}
		z := c.GetOrCreateZone(id)
		z.applyStatus(status)
		if status.Zone != nil {
			z.applyDefinition(*status.Zone)
		}
		updated = append(updated, z)
	}
	applyDefinition := func(def ZoneDefinition) {
		id, ok := IDFromHref(def.Href)
		if !ok {
			slog.Warn("leap: zone definition missing id", "href", def.Href)
			return
		}
		z := c.GetOrCreateZone(id)
		z.applyDefinition(def)
		updated = append(updated, z)
	}

	switch body := msg.Body.(type) {
	case ZoneStatusBody:
		applyStatus(body.ZoneStatus)
	case MultiZoneStatusBody:
		for _, s := range body.ZoneStatuses {
			applyStatus(s)
		}
	case MultiZoneExpandedStatusBody:
		for _, s := range body.ZoneExpandedStatuses {
			applyStatus(s)
		}
	case ZoneTypeGroupBody:
		applyStatus(body.ZoneTypeGroupStatus)
	case MultiZoneTypeGroupBody:
		for _, s := range body.ZoneTypeGroupStatuses {
			applyStatus(s)
		}
	case ZoneDefinitionBody:
		applyDefinition(body.Zone)
	case MultiZoneDefinitionBody:
		for _, d := range body.Zones {
			applyDefinition(d)
		}
	}

	return updated
}

// String renders catalog sizes for debugging.
func (c *Catalog) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("leap.Catalog(areas=%d zones=%d devices=%d)", len(c.areas), len(c.zones), len(c.devices))
}
