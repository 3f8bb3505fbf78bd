package errorbank

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestStatusCodeByKind(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("bad"), http.StatusBadRequest},
		{Conflict("busy"), http.StatusConflict},
		{NotFound("missing"), http.StatusNotFound},
		{Unauthorized("nope"), http.StatusForbidden},
		{Unprocessable("cannot"), http.StatusUnprocessableEntity},
		{Internal("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.StatusCode(); got != tc.want {
			t.Errorf("kind %s: status = %d, want %d", tc.err.Kind(), got, tc.want)
		}
	}
}

func TestGRPCCodeByKind(t *testing.T) {
	if got := Unauthorized("nope").GRPCCode(); got != codes.PermissionDenied {
		t.Fatalf("unauthorized grpc code = %v, want PermissionDenied", got)
	}
	if got := Conflict("busy").GRPCCode(); got != codes.AlreadyExists {
		t.Fatalf("conflict grpc code = %v, want AlreadyExists", got)
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("disk full")
	appErr := From(cause)
	if appErr.Kind() != KindInternal {
		t.Fatalf("kind = %s, want internal", appErr.Kind())
	}
	if !errors.Is(appErr, cause) {
		t.Fatalf("wrapped cause lost")
	}

	conflict := Conflict("stock", WithDetail("unavailable", []string{"Tomato"}))
	if got := From(conflict); got != conflict {
		t.Fatalf("From should pass AppError through unchanged")
	}
	if conflict.Details()["unavailable"] == nil {
		t.Fatalf("detail lost")
	}
}
