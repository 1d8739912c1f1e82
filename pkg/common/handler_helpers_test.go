package common_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridealong/event-carpool/pkg/common"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantHandled bool
		wantStatus  int
		wantBody    string
	}{
		{
			name:        "nil error is not handled",
			err:         nil,
			wantHandled: false,
		},
		{
			name:        "not found keeps its status",
			err:         common.NewNotFoundError("profile not found", nil),
			wantHandled: true,
			wantStatus:  http.StatusNotFound,
			wantBody:    "profile not found",
		},
		{
			name:        "wrapped app error unwraps",
			err:         fmt.Errorf("loading profile: %w", common.NewConflictError("profile already exists", nil)),
			wantHandled: true,
			wantStatus:  http.StatusConflict,
			wantBody:    "profile already exists",
		},
		{
			name:        "plain error falls back to 500",
			err:         errors.New("connection reset"),
			wantHandled: true,
			wantStatus:  http.StatusInternalServerError,
			wantBody:    "failed to run matching",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/matches", nil)

			handled := common.HandleServiceError(c, tt.err, "failed to run matching")
			assert.Equal(t, tt.wantHandled, handled)

			if tt.wantHandled {
				assert.Equal(t, tt.wantStatus, w.Code)
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandleServiceErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/matches", nil)

	common.HandleServiceError(c, common.NewValidationError("tripDirection must be TO_EVENT or FROM_EVENT", nil), "failed")

	var resp common.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, common.CodeValidation, resp.Error.ErrorCode)
	assert.Equal(t, http.StatusBadRequest, resp.Error.Code)
}

func TestParseUUIDParam(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		wantOK bool
	}{
		{"valid UUID", uuid.NewString(), true},
		{"malformed UUID", "not-a-uuid", false},
		{"missing param", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: tt.value}}
			c.Request = httptest.NewRequest(http.MethodGet, "/matches/"+tt.value, nil)

			id, ok := common.ParseUUIDParam(c, "id", "match ID")
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.NotEqual(t, uuid.Nil, id)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
