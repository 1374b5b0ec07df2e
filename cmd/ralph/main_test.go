package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinArgs_singleWord(t *testing.T) {
	assert.Equal(t, "refactor", joinArgs([]string{"refactor"}))
}

func TestJoinArgs_multipleWords(t *testing.T) {
	assert.Equal(t, "no speculative generality", joinArgs([]string{"no", "speculative", "generality"}))
}
