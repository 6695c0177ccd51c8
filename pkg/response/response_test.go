package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseError(t *testing.T) {
	assert.Equal(t, "400 Caught!", Text(http.StatusBadRequest, "Caught!").Error())
	assert.Equal(t, "401 Unauthorized", Text(http.StatusUnauthorized, "").Error())
	assert.Equal(t, "599", (&Response{Status: 599}).Error())
}

func TestJSONPayload(t *testing.T) {
	r := JSON(http.StatusConflict, []byte(`{"reason":"taken"}`))
	assert.Equal(t, map[string]any{"reason": "taken"}, r.Data)

	r = JSON(http.StatusConflict, []byte(`not json`))
	assert.Equal(t, "not json", r.Data)
}

func TestIsRouteErrorResponse(t *testing.T) {
	thrown := Text(http.StatusUnauthorized, "")
	wrapped := fmt.Errorf("loader: %w", thrown)

	got, ok := IsRouteErrorResponse(wrapped)
	require.True(t, ok)
	assert.Same(t, thrown, got)

	_, ok = IsRouteErrorResponse(errors.New("boom"))
	assert.False(t, ok)

	_, ok = IsRouteErrorResponse(nil)
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, Status(nil))
	assert.Equal(t, http.StatusNotFound, Status(NotFound("/not/found")))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, Status(Unexpected(errors.New("boom"))))
}

func TestInternalSignals(t *testing.T) {
	nf := NotFound("/not/found")
	assert.True(t, nf.Internal)
	assert.Contains(t, nf.Data, "/not/found")

	mna := MethodNotAllowed(http.MethodPost, "/nested", "nested")
	assert.Equal(t, http.StatusMethodNotAllowed, mna.Status)
	assert.True(t, mna.Internal)

	br := BadRequest(errors.New("bad path"))
	assert.Equal(t, http.StatusBadRequest, br.Status)
	assert.Equal(t, "bad path", br.Data)
}

func TestUnexpected(t *testing.T) {
	assert.Nil(t, Unexpected(nil))

	sig := Text(http.StatusTeapot, "")
	assert.Same(t, sig, Unexpected(sig))

	base := errors.New("db down")
	err := Unexpected(base)
	var ue *UnexpectedError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, base)
	assert.Same(t, err, Unexpected(err))

	b, err := json.Marshal(err)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"db down"}`, string(b))
}

func TestFromPanic(t *testing.T) {
	ue := FromPanic("kaboom")
	assert.Equal(t, "panic: kaboom", ue.Error())
	assert.NotEmpty(t, ue.Stack)

	base := errors.New("typed")
	ue = FromPanic(base)
	assert.ErrorIs(t, ue, base)
}
