package analyzer

import (
	"regexp"
	"testing"
)

func TestFingerprint(t *testing.T) {
	format := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{8}$`)

	a := Fingerprint("https://static.zara.net/photos/dress.jpg")
	if !format.MatchString(a) {
		t.Errorf("Fingerprint format = %q, want 8 hex + dash + 8 hex", a)
	}

	if Fingerprint("same input") != Fingerprint("same input") {
		t.Error("Fingerprint not deterministic")
	}
	if Fingerprint("input a") == Fingerprint("input b") {
		t.Error("distinct inputs collided")
	}
	if !format.MatchString(Fingerprint("")) {
		t.Error("empty input must still fingerprint")
	}
}
