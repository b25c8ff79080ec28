package parquet_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-delay-eda/internal/adapter/csvfile"
	pq "github.com/couchcryptid/flight-delay-eda/internal/adapter/parquet"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

func TestWriteCleaned_ReadBack(t *testing.T) {
	ds, err := csvfile.Read(strings.NewReader(
		"fl_date,op_unique_carrier,origin,dest,crs_dep_time,arr_delay,dep_delay,distance,carrier_delay\n" +
			"2024-01-05,AA,JFK,LAX,0815,20,5,2475,20\n" +
			"2024-01-06,DL,ATL,ORD,1330,,,606,\n"))
	require.NoError(t, err)
	require.NoError(t, domain.EnrichFeatures(ds))

	path := filepath.Join(t.TempDir(), "out", "cleaned.parquet")
	n, err := pq.WriteCleaned(path, ds)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	pf, err := parquet.OpenFile(f, info.Size())
	require.NoError(t, err)
	reader := parquet.NewGenericReader[pq.FlightRow](pf)
	defer reader.Close()

	rows := make([]pq.FlightRow, 4)
	got, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	require.Equal(t, 2, got)

	first := rows[0]
	assert.Equal(t, "AA", first.Carrier)
	assert.Equal(t, "JFK -> LAX", first.Route)
	assert.Equal(t, int32(8), first.HourOfDay)
	assert.Equal(t, "Morning", first.TimeOfDay)
	require.NotNil(t, first.ArrDelay)
	assert.InDelta(t, 20.0, *first.ArrDelay, 1e-9)
	assert.True(t, first.IsDelayed)
	assert.InDelta(t, 20.0, first.CarrierDelay, 1e-9)

	second := rows[1]
	assert.Nil(t, second.ArrDelay)
	assert.False(t, second.IsDelayed)
	assert.Zero(t, second.CarrierDelay)
	assert.Empty(t, second.CancellationCode)
}
