package services

import (
	"testing"

	"donation-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendCorridor(t *testing.T) {
	box := domain.BoundingBox{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1}
	candidates := []*domain.Donation{
		{ID: 1, PickupCoords: pt(0.5, 0.5)},
		{ID: 2, PickupCoords: pt(1.02, 0.5)},
		{ID: 3},
		{ID: 4, PickupCoords: pt(1.005, 1.005)},
		{ID: 5, PickupCoords: pt(-0.005, 0)},
		{ID: 6, PickupCoords: pt(0.2, 0.2)},
	}

	got, err := Recommend(candidates, box, 0.01, 3)
	require.NoError(t, err)

	ids := make([]int64, len(got))
	for i, d := range got {
		ids[i] = d.ID
	}
	assert.Equal(t, []int64{1, 4, 5}, ids)
}

func TestRecommendDegenerateBoxAndLimits(t *testing.T) {
	box := domain.BoundingBox{MinLon: 1, MinLat: 1, MaxLon: 1, MaxLat: 1}
	candidates := []*domain.Donation{{ID: 1, PickupCoords: pt(1, 1)}}

	got, err := Recommend(candidates, box, 0, 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = Recommend(candidates, box, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Recommend(candidates, domain.BoundingBox{MinLon: 2, MaxLon: 1}, 0, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
