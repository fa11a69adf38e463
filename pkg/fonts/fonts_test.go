package fonts

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestFontData(t *testing.T) {
	for name, data := range map[string][]byte{"regular": Regular(), "bold": Bold()} {
		// TrueType files start with the 0x00010000 sfnt version.
		if len(data) < 4 || !bytes.Equal(data[:4], []byte{0, 1, 0, 0}) {
			t.Errorf("%s: not a TrueType font", name)
		}
	}
}

func TestRegularBase64(t *testing.T) {
	got, err := base64.StdEncoding.DecodeString(RegularBase64())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, Regular()) {
		t.Error("RegularBase64 does not decode to Regular()")
	}
	if RegularBase64() != RegularBase64() {
		t.Error("RegularBase64 not stable")
	}
}
