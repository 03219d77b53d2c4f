package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/exceleasy/pkg/errs"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("get file: %w", errs.NotFound("file %s not found", "01J"))

	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.NotErrorIs(t, err, errs.ErrForbidden)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, "file 01J not found", errs.Message(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		errs.Validation("bad"):                http.StatusBadRequest,
		errs.Decode(errors.New("zip"), "bad"): http.StatusBadRequest,
		errs.NotFound("x"):                    http.StatusNotFound,
		errs.Forbidden("x"):                   http.StatusForbidden,
		errs.Unauthorized("x"):                http.StatusUnauthorized,
		errs.Store(errors.New("conn"), "op"):  http.StatusInternalServerError,
		errors.New("plain"):                   http.StatusInternalServerError,
	}

	for err, want := range cases {
		assert.Equal(t, want, errs.HTTPStatus(err), err.Error())
	}
}

func TestStoreErrorHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	err := errs.Store(cause, "create file")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, errs.ErrStore)
	assert.True(t, errs.IsRetryable(err))
	assert.NotContains(t, errs.Message(err), "10.0.0.1")
	assert.False(t, errs.IsRetryable(errs.NotFound("x")))
}
