// Package csvexport renders a reservation sequence as spreadsheet
// rows. It is a pure transformation: the same input always produces
// byte-identical output.
package csvexport

import (
	"encoding/csv"
	"io"
	"staysync/lib/reservation"
	"strconv"
)

var columns = []string{
	"id",
	"unit",
	"guest",
	"status",
	"arrival",
	"departure",
	"nights",
	"owner_revenue",
}

func Write(w io.Writer, records []reservation.Record) error {
	out := csv.NewWriter(w)

	if err := out.Write(columns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.UnitName,
			r.GuestName,
			r.Status,
			r.Arrival,
			r.Departure,
			strconv.Itoa(r.Breakdown.Nights),
			strconv.FormatFloat(r.Breakdown.OwnerRevenue, 'f', 2, 64),
		}
		if err := out.Write(row); err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}
