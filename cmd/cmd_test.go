package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAdmin(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")

	assert.ErrorContains(t, validateAdmin("", "long enough password"), "--email")
	assert.ErrorContains(t, validateAdmin("a@example.com", "short"), "at least 12")
	assert.NoError(t, validateAdmin("a@example.com", "long enough password"))

	t.Setenv("ADMIN_EMAIL", "env@example.com")
	assert.NoError(t, validateAdmin("", "long enough password"))
}

func TestCommandTree(t *testing.T) {
	want := map[string]bool{"serve": false, "migrate": false, "seed": false, "admin": false, "content": false, "version": false}
	for _, c := range RootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, name)
	}

	up, _, err := RootCmd.Find([]string{"migrate", "up"})
	assert.NoError(t, err)
	assert.Equal(t, "up", up.Name())
}
