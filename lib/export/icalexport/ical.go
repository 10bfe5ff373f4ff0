// Package icalexport renders a reservation sequence as a calendar,
// one all-day event per stay, and can publish the rendered calendar
// to an object-storage bucket for calendar apps to subscribe to.
package icalexport

import (
	"fmt"
	"staysync/lib/reservation"
	"time"

	ics "github.com/arran4/golang-ical"
)

const dateLayout = "2006-01-02"

// Render produces the calendar text. Output depends only on the
// records: timestamps are derived from each reservation, never from
// the clock, so re-rendering the same sequence is byte-identical.
func Render(records []reservation.Record) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//staysync//reservations//EN")

	for _, r := range records {
		arrival, err := time.Parse(dateLayout, r.Arrival)
		if err != nil {
			return "", fmt.Errorf("reservation %d: bad arrival date %q: %w", r.ID, r.Arrival, err)
		}
		departure, err := time.Parse(dateLayout, r.Departure)
		if err != nil {
			return "", fmt.Errorf("reservation %d: bad departure date %q: %w", r.ID, r.Departure, err)
		}

		event := cal.AddEvent(fmt.Sprintf("reservation-%d@staysync", r.ID))
		event.SetDtStampTime(arrival)
		event.SetAllDayStartAt(arrival)
		event.SetAllDayEndAt(departure)
		event.SetSummary(fmt.Sprintf("%s - %s", r.GuestName, r.UnitName))
		event.SetDescription(fmt.Sprintf(
			"status: %s, nights: %d",
			r.Status, r.Breakdown.Nights,
		))
	}

	return cal.Serialize(), nil
}
