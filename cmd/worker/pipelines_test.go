package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedPtr_EmptyStringIsNil(t *testing.T) {
	assert.Nil(t, seedPtr(""))
}

func TestSeedPtr_NonEmptyStringIsPointer(t *testing.T) {
	p := seedPtr("how to")
	if assert.NotNil(t, p) {
		assert.Equal(t, "how to", *p)
	}
}
