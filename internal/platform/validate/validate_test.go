package validate

import (
	"testing"

	perr "grantwise/internal/platform/errors"
)

type sample struct {
	Kind   string  `json:"kind" validate:"required,oneof=a b"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Note   string  `json:"note,omitempty" validate:"max=5"`
}

func TestStruct(t *testing.T) {
	cases := []struct {
		name  string
		in    sample
		field string
		msg   string
	}{
		{"ok", sample{Kind: "a", Amount: 1}, "", ""},
		{"oneof", sample{Kind: "z", Amount: 1}, "kind", "kind must be one of [a b]"},
		{"gt", sample{Kind: "b", Amount: 0}, "amount", "amount must be greater than 0"},
		{"max", sample{Kind: "b", Amount: 2, Note: "toolong"}, "note", "note must be at most 5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Struct(c.in)
			if c.field == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			e, ok := perr.As(err)
			if !ok || e.Code() != perr.ErrorCodeValidation {
				t.Fatalf("want validation error, got %v", err)
			}
			if e.Field() != c.field || e.Error() != c.msg {
				t.Fatalf("field=%q msg=%q, want %q %q", e.Field(), e.Error(), c.field, c.msg)
			}
		})
	}
}

func TestStruct_NonStruct(t *testing.T) {
	if perr.CodeOf(Struct(42)) != perr.ErrorCodeUnknown {
		t.Fatalf("non-struct should be a misuse error")
	}
}
