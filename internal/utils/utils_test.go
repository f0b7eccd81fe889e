package utils_test

import (
	"context"
	"testing"

	"github.com/C2Farms/C2-Backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.3, utils.Round2(0.1+0.2))
	assert.Equal(t, 1.0, utils.Round2(1.005))
	assert.Equal(t, -1.0, utils.Round2(-1.005))
	assert.Equal(t, 0.13, utils.Round2(0.125))
	assert.Equal(t, -0.12, utils.Round2(-0.125))
	assert.Equal(t, 12.35, utils.Round2(12.345678))
	assert.Equal(t, -2.5, utils.Round2(-2.499999))
	assert.Equal(t, 50000.0, utils.Round2(50000))
	assert.Equal(t, 0.0, utils.Round2(0))
}

func TestFarmIDContext(t *testing.T) {
	_, ok := utils.GetFarmIDFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := utils.GetFarmIDFromContext(utils.WithFarmID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
