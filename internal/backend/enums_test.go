package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressRatingPercentage(t *testing.T) {
	tests := []struct {
		rating ProgressRating
		want   int
	}{
		{RatingNone, 0},
		{RatingRed, 25},
		{RatingAmber, 50},
		{RatingBlue, 75},
		{RatingGreen, 100},
		{ProgressRating("SOMETHING_ELSE"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.rating), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rating.Percentage())
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"single word", SectorHealth.DisplayName(), "Health"},
		{"underscores become spaces", ProvinceEasternCape.DisplayName(), "Eastern Cape"},
		{"keeps the upstream spelling", SectorEnvironment.DisplayName(), "Enviroment"},
		{"multiple words", SectorInternationalRelations.DisplayName(), "International Relations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestEnumSets(t *testing.T) {
	assert.Len(t, Sectors(), 13)
	assert.Len(t, Provinces(), 9)
	assert.Len(t, Quarters(), 4)
}
