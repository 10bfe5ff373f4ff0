package reservation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `{
	"id": 42,
	"status": "Confirmed",
	"unitName": "Beach House",
	"guestName": "Ada Lovelace",
	"arrivalDate": "2026-07-01",
	"departureDate": "2026-07-08",
	"breakdown": {"nights": 7, "grossRent": 2100.50, "ownerRevenue": 1680.40},
	"channel": "direct",
	"someFutureField": {"nested": true}
}`

func TestDecodeKeepsRawVerbatim(t *testing.T) {
	r, err := Decode(json.RawMessage(sample))
	require.NoError(t, err)

	require.Equal(t, int64(42), r.ID)
	require.Equal(t, "Confirmed", r.Status)
	require.Equal(t, "Beach House", r.UnitName)
	require.Equal(t, "Ada Lovelace", r.GuestName)
	require.Equal(t, "2026-07-01", r.Arrival)
	require.Equal(t, "2026-07-08", r.Departure)
	require.Equal(t, 7, r.Breakdown.Nights)
	require.Equal(t, 1680.40, r.Breakdown.OwnerRevenue)

	// fields the tool does not model survive untouched in Raw
	require.Equal(t, sample, string(r.Raw))
}

func TestDecodeAllPreservesOrder(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"id": 3}`),
		json.RawMessage(`{"id": 1}`),
		json.RawMessage(`{"id": 2}`),
	}
	records, err := DecodeAll(raws)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, int64(3), records[0].ID)
	require.Equal(t, int64(1), records[1].ID)
	require.Equal(t, int64(2), records[2].ID)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(json.RawMessage(`{broken`))
	require.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reservations-2026.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1}, {"id": 2}]`), 0644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, int64(1), records[0].ID)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
