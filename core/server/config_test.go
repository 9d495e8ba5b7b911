package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEnv(t *testing.T) {
	assert.True(t, Config{Env: EnvDevelopment}.IsValidEnv())
	assert.True(t, Config{Env: EnvProduction}.IsValidEnv())
	assert.False(t, Config{Env: "staging"}.IsValidEnv())
	assert.False(t, Config{}.IsValidEnv())
}
