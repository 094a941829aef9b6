package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tour-booking/internal/data/entity"
)

func TestAuthorized(t *testing.T) {
	vendor := &Principal{Role: entity.RoleVendor}

	assert.False(t, Authorized(nil), "nil principal is never authorized")
	assert.False(t, Authorized(nil, entity.RoleUser))
	assert.False(t, Authorized(vendor), "an empty role list authorizes nobody")
	assert.True(t, Authorized(vendor, entity.RoleVendor))
	assert.True(t, Authorized(vendor, entity.RoleAdmin, entity.RoleVendor))
	assert.False(t, Authorized(vendor, entity.RoleAdmin))
}
