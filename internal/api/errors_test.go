package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"testing"
)

func TestKindOf(t *testing.T) {
	_, notExist := os.Open("/definitely/not/here")

	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), KindExecution},
		{"typed", NewAccessDeniedError("no"), KindAccessDenied},
		{"wrapped typed", fmt.Errorf("outer: %w", NewBadRequestError("bad")), KindBadRequest},
		{"missing file", notExist, KindNotFound},
		{"permission", fs.ErrPermission, KindAccessDenied},
		{"wrap keeps kind", Wrap(KindConfig, errors.New("x"), "config"), KindConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(KindExecution, nil, "nothing"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestEnvelopeStatus(t *testing.T) {
	tests := []struct {
		env  *Envelope
		code int
	}{
		{Success("A3", 2), http.StatusOK},
		{Failure(NewUnknownTaskError("unknown task: Z9")), http.StatusNotFound},
		{Failure(NewAccessDeniedError("denied")), http.StatusForbidden},
		{Failure(errors.New("exit status 1")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.env.HTTPStatus(); got != tt.code {
			t.Errorf("%+v: status %d, want %d", tt.env, got, tt.code)
		}
	}
}
