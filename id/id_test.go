package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/escrow/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"LeaseID", id.NewLeaseID, "lease_"},
		{"PaymentID", id.NewPaymentID, "pay_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("Got %q, want prefix %q", got, tt.prefix)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	original := id.NewLeaseID()

	parsed, err := id.Parse(original.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed.String() != original.String() {
		t.Errorf("Round trip: got %q, want %q", parsed.String(), original.String())
	}
	if parsed.Prefix() != id.PrefixLease {
		t.Errorf("Prefix: got %q, want %q", parsed.Prefix(), id.PrefixLease)
	}
}

func TestParseWithPrefix(t *testing.T) {
	leaseID := id.NewLeaseID()

	if _, err := id.ParseLeaseID(leaseID.String()); err != nil {
		t.Errorf("ParseLeaseID should accept lease ID: %v", err)
	}
	if _, err := id.ParsePaymentID(leaseID.String()); err == nil {
		t.Error("ParsePaymentID should reject lease ID")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"",
		"not-a-typeid",
		"lease_!!!invalid!!!",
	}

	for _, s := range tests {
		if _, err := id.Parse(s); err == nil {
			t.Errorf("Parse(%q) should fail", s)
		}
	}
}

func TestNilID(t *testing.T) {
	var nilID id.ID

	if !nilID.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if nilID.String() != "" {
		t.Errorf("nil ID String: got %q, want empty", nilID.String())
	}

	generated := id.NewLeaseID()
	if generated.IsNil() {
		t.Error("generated ID should not be nil")
	}
}

func TestTextMarshaling(t *testing.T) {
	original := id.NewPaymentID()

	data, err := original.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatal(err)
	}
	if decoded.String() != original.String() {
		t.Errorf("Round trip: got %q, want %q", decoded.String(), original.String())
	}

	var empty id.ID
	if err := empty.UnmarshalText(nil); err != nil {
		t.Fatal(err)
	}
	if !empty.IsNil() {
		t.Error("unmarshaling empty text should produce nil ID")
	}
}

func TestSQLValueScan(t *testing.T) {
	original := id.NewLeaseID()

	val, err := original.Value()
	if err != nil {
		t.Fatal(err)
	}

	var scanned id.ID
	if err := scanned.Scan(val); err != nil {
		t.Fatal(err)
	}
	if scanned.String() != original.String() {
		t.Errorf("Round trip: got %q, want %q", scanned.String(), original.String())
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if !fromNil.IsNil() {
		t.Error("scanning nil should produce nil ID")
	}

	nilVal, err := id.Nil.Value()
	if err != nil {
		t.Fatal(err)
	}
	if nilVal != nil {
		t.Errorf("nil ID Value: got %v, want nil", nilVal)
	}
}
