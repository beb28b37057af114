package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/services/auth"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
		{fmt.Errorf("edit: %w", model.ErrStationNotFound), http.StatusNotFound, CodeStationNotFound},
		{model.ErrLogEntryNotFound, http.StatusNotFound, CodeLogEntryNotFound},
		{model.InvalidInput("points must be an integer"), http.StatusBadRequest, CodeInvalidRequest},
		{model.ErrLogEntryConflict, http.StatusConflict, CodeLogEntryConflict},
		{model.ErrPlayerNumberTaken, http.StatusConflict, CodeNumberTaken},
		{model.ErrLastAdmin, http.StatusConflict, CodeLastAdmin},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
		{NewForbiddenError(), http.StatusForbidden, CodeForbidden},
		{model.StorageError(errors.New("connection refused")), http.StatusInternalServerError, CodeStorageError},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tc.err)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestInvalidInputMessageIsKept(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.InvalidInput("delay must be a non-negative integer"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error.Message, "delay must be a non-negative integer")
}

func TestStorageDetailIsHidden(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.StorageError(errors.New("dial tcp 10.0.0.5:6379")))
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}
