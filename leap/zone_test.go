package leap_test

import (
	"context"
	"testing"

	"github.com/leap-go/leap/leap"
)

// fakeRequester lets entity-level helper methods be tested without a real
// Protocol/Session, by canning the response to the next RequestChecked
// call and recording what was asked for.
type fakeRequester struct {
	lastMsg leap.Message
	resp    leap.Message
	err     error
}

func (f *fakeRequester) RequestChecked(ctx context.Context, msg leap.Message) (leap.Message, error) {
	f.lastMsg = msg
	return f.resp, f.err
}

func TestZone_RefreshState_AppliesStatus(t *testing.T) {
	c := leap.NewCatalog()
	z := c.GetOrCreateZone(842)

	level := 33
	fake := &fakeRequester{resp: leap.Message{
		Body: leap.ZoneStatusBody{ZoneStatus: leap.ZoneStatus{Href: "/zone/842/status", Level: &level}},
	}}

	if err := z.RefreshState(context.Background(), fake); err != nil {
		t.Fatalf("RefreshState: %v", err)
	}
	if fake.lastMsg.Header.Url != "/zone/842/status" {
		t.Errorf("requested Url = %q", fake.lastMsg.Header.Url)
	}
	if z.Level == nil || *z.Level != 33 {
		t.Fatalf("Level = %v, want 33", z.Level)
	}
}

func TestZone_Command_SendsToCommandProcessor(t *testing.T) {
	c := leap.NewCatalog()
	z := c.GetOrCreateZone(9)
	fake := &fakeRequester{}

	if err := z.Command(context.Background(), fake, leap.SwitchedLevelCommand(true)); err != nil {
		t.Fatalf("Command: %v", err)
	}
	if fake.lastMsg.Header.Url != "/zone/9/commandprocessor" {
		t.Errorf("Url = %q", fake.lastMsg.Header.Url)
	}
	if fake.lastMsg.CommuniqueType != leap.CommuniqueTypeCreateRequest {
		t.Errorf("CommuniqueType = %v", fake.lastMsg.CommuniqueType)
	}
	body, ok := fake.lastMsg.Body.(leap.CommandBody)
	if !ok {
		t.Fatalf("Body = %T, want CommandBody", fake.lastMsg.Body)
	}
	if body.Command.CommandType != leap.CommandTypeGoToSwitchedLevel {
		t.Errorf("CommandType = %v", body.Command.CommandType)
	}
}

func TestDevice_Reboot_SendsRebootCommand(t *testing.T) {
	c := leap.NewCatalog()
	d := c.GetOrCreateDevice(3)
	fake := &fakeRequester{}

	if err := d.Reboot(context.Background(), fake); err != nil {
		t.Fatalf("Reboot: %v", err)
	}
	if fake.lastMsg.Header.Url != "/device/3/commandprocessor" {
		t.Errorf("Url = %q", fake.lastMsg.Header.Url)
	}
	body := fake.lastMsg.Body.(leap.CommandBody)
	if body.Command.CommandType != leap.CommandTypeReboot {
		t.Errorf("CommandType = %v, want Reboot", body.Command.CommandType)
	}
}

func TestArea_RefreshDefinition_TreatsBodyAsSingleEntity(t *testing.T) {
	c := leap.NewCatalog()
	a := c.GetOrCreateArea(5)

	name := "Kitchen"
	sortOrder := 2
	isLeaf := true
	fake := &fakeRequester{resp: leap.Message{
		Body: leap.AreaDefinitionBody{Area: leap.AreaDefinition{Href: "/area/5", Name: &name, SortOrder: &sortOrder, IsLeaf: &isLeaf}},
	}}

	if err := a.RefreshDefinition(context.Background(), fake); err != nil {
		t.Fatalf("RefreshDefinition: %v", err)
	}
	if a.Name != "Kitchen" {
		t.Errorf("Name = %q, want Kitchen", a.Name)
	}
	if a.SortOrder != 2 {
		t.Errorf("SortOrder = %d, want 2", a.SortOrder)
	}
}
