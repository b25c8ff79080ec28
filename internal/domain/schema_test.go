package domain_test

import (
	"errors"
	"testing"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema_AllPresent(t *testing.T) {
	header := append([]string{"year"}, domain.RequiredColumns...)
	row := make([]string, len(header))
	ds := mustDataset(t, [][]string{header, row})

	assert.NoError(t, domain.ValidateSchema(ds, domain.RequiredColumns))
}

func TestValidateSchema_ZeroRows(t *testing.T) {
	ds := mustDataset(t, [][]string{domain.RequiredColumns})
	require.Equal(t, 0, ds.Len())

	assert.NoError(t, domain.ValidateSchema(ds, domain.RequiredColumns))
}

func TestValidateSchema_Missing(t *testing.T) {
	var header []string
	for _, c := range domain.RequiredColumns {
		if c == domain.ColDistance || c == domain.ColWeatherDelay {
			continue
		}
		header = append(header, c)
	}
	ds := mustDataset(t, [][]string{header})

	err := domain.ValidateSchema(ds, domain.RequiredColumns)
	require.Error(t, err)

	var schemaErr *domain.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{domain.ColDistance, domain.ColWeatherDelay}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "distance, weather_delay")
}
