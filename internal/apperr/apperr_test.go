package apperr

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"authorization", Authorization("nope"), KindAuthorization},
		{"not found", NotFound("missing %s", "thing"), KindNotFound},
		{"conflict", Conflict("already done"), KindConflict},
		{"expired", Expired("too late"), KindExpired},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
		{"wrapped", pkgerrors.Wrap(NotFound("missing"), "lookup"), KindNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestMessageFormatting(t *testing.T) {
	err := NotFound("submission %s not found", "abc")
	if err.Error() != "submission abc not found" {
		t.Fatalf("message = %q", err.Error())
	}
}
