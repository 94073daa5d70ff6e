package blocklib

import (
	"errors"
	"testing"
)

func TestValidateTimestampWrite(t *testing.T) {
	tests := []struct {
		name    string
		stored  Timestamp
		next    Timestamp
		wantErr error
	}{
		{"first write", TimestampNone, 100, nil},
		{"advance", 100, 200, nil},
		{"rewrite same value", 100, 100, nil},
		{"unknown rejected", TimestampNone, TimestampUnknown, ErrTimestampUnknown},
		{"unknown rejected over stored", 100, TimestampUnknown, ErrTimestampUnknown},
		{"regression rejected", 200, 100, ErrTimestampRegression},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTimestampWrite(tc.stored, tc.next)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateTimestampWrite(%d, %d) = %v, want %v",
					tc.stored, tc.next, err, tc.wantErr)
			}
		})
	}
}

func TestTimestampKnown(t *testing.T) {
	if TimestampUnknown.Known() {
		t.Error("unknown sentinel must not be known")
	}
	if TimestampNone.Known() {
		t.Error("none sentinel must not be known")
	}
	if !Timestamp(1).Known() {
		t.Error("positive timestamp must be known")
	}
}

func TestParseClass(t *testing.T) {
	for _, c := range Classes {
		got, err := ParseClass(string(c))
		if err != nil || got != c {
			t.Fatalf("ParseClass(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseClass("bogus"); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("ParseClass(bogus) err = %v, want ErrUnknownClass", err)
	}
	if _, err := ParseClass(""); err == nil {
		t.Fatal("ParseClass(\"\") must fail")
	}
}
