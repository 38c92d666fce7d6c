package leap_test

import (
	"strconv"
	"testing"

	"github.com/leap-go/leap/leap"
)

func TestIDFromHref_WellFormed(t *testing.T) {
	for _, kind := range []string{"area", "zone", "device"} {
		for _, n := range []int{0, 1, 842, 999999} {
			for _, suffix := range []string{"", "/status"} {
				href := "/" + kind + "/" + strconv.Itoa(n) + suffix
				id, ok := leap.IDFromHref(href)
				if !ok || id != n {
					t.Errorf("IDFromHref(%q) = (%d, %v), want (%d, true)", href, id, ok, n)
				}
			}
		}
	}
}

func TestIDFromHref_Malformed(t *testing.T) {
	for _, href := range []string{"", "/nonumber", "nonumber", "/area/", "area/5"} {
		if id, ok := leap.IDFromHref(href); ok {
			t.Errorf("IDFromHref(%q) = (%d, true), want ok=false", href, id)
		}
	}
}

func TestHRef_ID(t *testing.T) {
	h := leap.HRef{Href: "/area/117"}
	id, ok := h.ID()
	if !ok || id != 117 {
		t.Fatalf("HRef{%q}.ID() = (%d, %v), want (117, true)", h.Href, id, ok)
	}
}
