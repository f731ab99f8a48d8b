package validator

import "testing"

type sample struct {
	QuoteNumber string  `validate:"notblank"`
	ValidUntil  *string `validate:"omitempty,validdate"`
}

func strPtr(s string) *string { return &s }

func TestCustomTags(t *testing.T) {
	val := New()

	cases := []struct {
		name    string
		input   sample
		wantErr bool
	}{
		{name: "date", input: sample{QuoteNumber: "Q-1", ValidUntil: strPtr("2024-01-01")}},
		{name: "timestamp", input: sample{QuoteNumber: "Q-1", ValidUntil: strPtr("2024-01-01T10:00:00Z")}},
		{name: "no deadline", input: sample{QuoteNumber: "Q-1"}},
		{name: "blank number", input: sample{QuoteNumber: "   "}, wantErr: true},
		{name: "garbage date", input: sample{QuoteNumber: "Q-1", ValidUntil: strPtr("next week")}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := val.Struct(tc.input)
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
