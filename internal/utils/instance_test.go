package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceID_StableAndShort(t *testing.T) {
	id := InstanceID()

	assert.Equal(t, id, InstanceID())
	assert.True(t, strings.HasPrefix(id, "SHOP-"))
	if id != "SHOP-UNKNOWN" {
		assert.Len(t, id, len("SHOP-")+8)
	}
}
