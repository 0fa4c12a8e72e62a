package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBOrdering(t *testing.T) {
	assert.Equal(t, "created_at DESC", DBOrdering{Field: "created_at"}.String())
	assert.Equal(t, "email ASC", DBOrdering{Field: "email", Ascending: true}.String())
}
