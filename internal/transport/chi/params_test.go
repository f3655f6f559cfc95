package chi

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

func TestBindSearchParams_OK(t *testing.T) {
	q, err := url.ParseQuery("tags=kitchen,home&longitude=18.0649&latitude=59.33258&radius=500.5&count=3")
	require.NoError(t, err)

	p, err := bindSearchParams(q)
	require.NoError(t, err)

	require.NotNil(t, p.Tags)
	assert.Equal(t, "kitchen,home", *p.Tags)
	assert.InDelta(t, 18.0649, p.Longitude, 1e-9)
	assert.InDelta(t, 59.33258, p.Latitude, 1e-9)
	assert.InDelta(t, 500.5, p.Radius, 1e-9)
	assert.Equal(t, 3, p.Count)
}

func TestBindSearchParams_TagsAbsent(t *testing.T) {
	q, err := url.ParseQuery("longitude=0&latitude=0&radius=0&count=0")
	require.NoError(t, err)

	p, err := bindSearchParams(q)
	require.NoError(t, err)
	assert.Nil(t, p.Tags)
	assert.Empty(t, derefString(p.Tags))
}

func TestBindSearchParams_Errors(t *testing.T) {
	tests := []struct {
		query string
		param string
	}{
		{"latitude=0&radius=0&count=0", "longitude"},
		{"longitude=x&latitude=0&radius=0&count=0", "longitude"},
		{"longitude=0&latitude=0&radius=0&count=ten", "count"},
		{"longitude=0&latitude=0&radius=0&count=1&count=2", "count"},
		{"longitude=0&latitude=95&radius=0&count=0", "latitude"},
		{"longitude=0&latitude=0&radius=-5&count=0", "radius"},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			_, err = bindSearchParams(q)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.param, ve.Param)
		})
	}
}
