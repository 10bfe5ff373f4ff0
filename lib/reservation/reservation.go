// Package reservation models one portal reservation as downstream
// consumers see it: the verbatim payload the fetch pipeline retrieved,
// plus the handful of fields the exporters and statistics actually
// read.
package reservation

import (
	"encoding/json"
	"os"
)

// Breakdown is the nested per-stay financial summary the portal
// embeds in every reservation.
type Breakdown struct {
	Nights       int     `json:"nights"`
	GrossRent    float64 `json:"grossRent"`
	OwnerRevenue float64 `json:"ownerRevenue"`
}

// Record decodes the fields consumers depend on and keeps the full
// payload verbatim in Raw, so re-serializing a sequence of records
// reproduces exactly what the portal returned.
type Record struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	UnitName  string    `json:"unitName"`
	GuestName string    `json:"guestName"`
	Arrival   string    `json:"arrivalDate"`
	Departure string    `json:"departureDate"`
	Breakdown Breakdown `json:"breakdown"`

	Raw json.RawMessage `json:"-"`
}

func Decode(raw json.RawMessage) (Record, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, err
	}
	r.Raw = raw
	return r, nil
}

func DecodeAll(raws []json.RawMessage) ([]Record, error) {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		r, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// ReadFile loads a persisted fetch result (a JSON array of verbatim
// reservation payloads) back into records, preserving order.
func ReadFile(path string) ([]Record, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(contents, &raws); err != nil {
		return nil, err
	}
	return DecodeAll(raws)
}
