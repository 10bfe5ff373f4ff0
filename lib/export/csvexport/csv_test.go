package csvexport

import (
	"bytes"
	"encoding/json"
	"staysync/lib/reservation"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRecords(t *testing.T) []reservation.Record {
	t.Helper()
	records, err := reservation.DecodeAll([]json.RawMessage{
		json.RawMessage(`{"id": 1, "unitName": "Beach House", "guestName": "Ada", "status": "Confirmed", "arrivalDate": "2026-07-01", "departureDate": "2026-07-08", "breakdown": {"nights": 7, "ownerRevenue": 1680.4}}`),
		json.RawMessage(`{"id": 2, "unitName": "Cabin", "guestName": "Grace", "status": "Checked Out", "arrivalDate": "2026-07-10", "departureDate": "2026-07-12", "breakdown": {"nights": 2, "ownerRevenue": 240}}`),
	})
	require.NoError(t, err)
	return records
}

func TestWrite(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(&out, sampleRecords(t)))

	expected := "id,unit,guest,status,arrival,departure,nights,owner_revenue\n" +
		"1,Beach House,Ada,Confirmed,2026-07-01,2026-07-08,7,1680.40\n" +
		"2,Cabin,Grace,Checked Out,2026-07-10,2026-07-12,2,240.00\n"
	require.Equal(t, expected, out.String())
}

// re-running the export against the same records is byte-identical
func TestWriteIdempotent(t *testing.T) {
	records := sampleRecords(t)

	var first, second bytes.Buffer
	require.NoError(t, Write(&first, records))
	require.NoError(t, Write(&second, records))
	require.Equal(t, first.Bytes(), second.Bytes())
}

func TestWriteEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(&out, nil))
	require.Equal(t, "id,unit,guest,status,arrival,departure,nights,owner_revenue\n", out.String())
}
