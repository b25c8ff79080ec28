package domain_test

import (
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

func mustDataset(t *testing.T, records [][]string) *domain.Dataset {
	t.Helper()
	ds, err := domain.FromRecords(records, nil)
	require.NoError(t, err)
	return ds
}

func mustTypedDataset(t *testing.T, records [][]string, types map[string]series.Type) *domain.Dataset {
	t.Helper()
	ds, err := domain.FromRecords(records, types)
	require.NoError(t, err)
	return ds
}
