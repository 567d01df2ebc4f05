package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandNameKeepsVerbAndKey(t *testing.T) {
	assert.Equal(t, "SET tablelimit:pres", commandName([]interface{}{"SET", "tablelimit:pres", []byte(`{"id":"pres"}`), "EX", 60}))
	assert.Equal(t, "PING", commandName([]interface{}{"PING"}))
	assert.Equal(t, "", commandName(nil))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", toString([]byte("abc")))
	assert.Equal(t, "42", toString(42))
}
