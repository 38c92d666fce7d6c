package leap_test

import (
	"testing"

	"github.com/leap-go/leap/leap"
)

func TestSubscribeAllZonesStatus_SuppressesBody(t *testing.T) {
	msg := leap.SubscribeAllZonesStatus()
	if msg.CommuniqueType != leap.CommuniqueTypeSubscribeRequest {
		t.Errorf("CommuniqueType = %v", msg.CommuniqueType)
	}
	if msg.Header.Url != "/zone/status" {
		t.Errorf("Url = %q", msg.Header.Url)
	}
	if msg.Header.Directives == nil || msg.Header.Directives.SuppressMessageBody == nil || !*msg.Header.Directives.SuppressMessageBody {
		t.Fatal("Directives.SuppressMessageBody not set to true")
	}
}

func TestSwitchedLevelCommand(t *testing.T) {
	on := leap.SwitchedLevelCommand(true)
	if on.CommandType != leap.CommandTypeGoToSwitchedLevel {
		t.Errorf("CommandType = %v", on.CommandType)
	}
	if on.SwitchedLevelParameters == nil || on.SwitchedLevelParameters.SwitchedLevel != leap.SwitchedStateOn {
		t.Fatalf("SwitchedLevelParameters = %v, want On", on.SwitchedLevelParameters)
	}

	off := leap.SwitchedLevelCommand(false)
	if off.SwitchedLevelParameters.SwitchedLevel != leap.SwitchedStateOff {
		t.Fatalf("SwitchedLevelParameters = %v, want Off", off.SwitchedLevelParameters)
	}
}

func TestDimmedLevelCommand(t *testing.T) {
	fade := "00:00:02"
	cmd := leap.DimmedLevelCommand(50, &fade)
	if cmd.CommandType != leap.CommandTypeGoToDimmedLevel {
		t.Errorf("CommandType = %v", cmd.CommandType)
	}
	if cmd.DimmedLevelParameters == nil || cmd.DimmedLevelParameters.Level != 50 {
		t.Fatalf("DimmedLevelParameters = %v", cmd.DimmedLevelParameters)
	}
	if cmd.DimmedLevelParameters.FadeTime == nil || *cmd.DimmedLevelParameters.FadeTime != fade {
		t.Fatalf("FadeTime = %v, want %q", cmd.DimmedLevelParameters.FadeTime, fade)
	}
}

func TestRebootCommand(t *testing.T) {
	cmd := leap.RebootCommand()
	if cmd.CommandType != leap.CommandTypeReboot {
		t.Errorf("CommandType = %v, want Reboot", cmd.CommandType)
	}
}

func TestLoginRequest(t *testing.T) {
	msg := leap.LoginRequest("user", "pass")
	if msg.CommuniqueType != leap.CommuniqueTypeUpdateRequest {
		t.Errorf("CommuniqueType = %v", msg.CommuniqueType)
	}
	body, ok := msg.Body.(leap.LoginBody)
	if !ok {
		t.Fatalf("Body = %T, want LoginBody", msg.Body)
	}
	if body.LoginID != "user" || body.Password != "pass" {
		t.Fatalf("LoginBody = %+v", body)
	}
	if body.ContextType != leap.ContextTypeApplication {
		t.Errorf("ContextType = %v", body.ContextType)
	}
}
