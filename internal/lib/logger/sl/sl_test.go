package sl

import (
	"errors"
	"testing"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != "error" || attr.Value.String() != "boom" {
		t.Fatalf("unexpected attr %v", attr)
	}
	if nilAttr := Err(nil); nilAttr.Value.String() != "<nil>" {
		t.Fatalf("unexpected attr for nil error: %v", nilAttr)
	}
}
