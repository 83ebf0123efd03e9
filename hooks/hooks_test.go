package hooks

import (
	"net/http"
	"testing"

	"portfolio-server/db"
	"portfolio-server/types"

	"github.com/stretchr/testify/assert"
)

func TestExecHook(t *testing.T) {
	t.Cleanup(Reset)

	assert.Nil(t, ExecHook(ContactSubmitted, HookParams{}))

	var got string
	RegisterHook(ContactSubmitted, func(params HookParams) *types.ApiError {
		got = params.Contact.Id
		return nil
	})
	RegisterHook(HealthCheck, func(params HookParams) *types.ApiError {
		return &types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "draining"}
	})

	assert.Nil(t, ExecHook(ContactSubmitted, HookParams{Contact: &db.ContactSubmission{Id: "abc"}}))
	assert.Equal(t, "abc", got)

	apiErr := ExecHook(HealthCheck, HookParams{})
	if assert.NotNil(t, apiErr) {
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	}
}
