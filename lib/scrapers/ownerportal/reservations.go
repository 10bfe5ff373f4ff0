package ownerportal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const dateLayout = "2006-01-02"

// fixed page size the portal's listing endpoint is queried with
const pageSize = 100

// bounds for the jittered pause between listing pages. the pause
// exists to stay under the portal's bulk-request detection, not for
// correctness.
const (
	minPageDelayMs = 500
	maxPageDelayMs = 1000
)

// listingResponse is the structural slice of the listing payload the
// pagination engine depends on. Everything else inside each
// reservation is opaque and passed through verbatim.
type listingResponse struct {
	Total        *int              `json:"total"`
	PageSize     *int              `json:"pageSize"`
	Reservations []json.RawMessage `json:"reservations"`
}

// FetchReservations pages through the reservations listing endpoint
// for the given date range and returns every record in server order,
// pages concatenated in request order. Total page count is recomputed
// from any response that reports both total and pageSize; a response
// reporting neither leaves the previous count in place, so a payload
// with no such fields still terminates after one page.
func (c *Client) FetchReservations(ctx context.Context, startDate, endDate time.Time) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "client:FetchReservations")
	defer span.End()
	span.SetAttributes(
		attribute.String("start_date", startDate.Format(dateLayout)),
		attribute.String("end_date", endDate.Format(dateLayout)),
	)

	var records []json.RawMessage
	page := 1
	totalPages := 1
	draw := 0

	for page <= totalPages {
		draw++
		query := url.Values{}
		query.Set("draw", strconv.Itoa(draw))
		query.Set("search", "")
		query.Set("startDate", startDate.Format(dateLayout))
		query.Set("endDate", endDate.Format(dateLayout))
		query.Set("unit", "")
		query.Set("pageSize", strconv.Itoa(pageSize))
		query.Set("page", strconv.Itoa(page))
		query.Set("sortColumn", "id")
		query.Set("sortDirection", "asc")
		// cache buster
		query.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

		res, err := c.get(ctx, c.opts.ReservationsPath, query, map[string]string{
			"accept":           "application/json, text/javascript, */*; q=0.01",
			"x-requested-with": "XMLHttpRequest",
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "listing request failed")
			return nil, err
		}
		if res.Status != http.StatusOK {
			span.SetStatus(codes.Error, "listing returned non-200")
			return nil, &FetchError{Status: res.Status, Page: page}
		}

		var listing listingResponse
		if res.IsJSON() {
			// only presence of the structural fields matters; an
			// unexpected shape reads as an empty page
			_ = json.Unmarshal(res.JSON, &listing)
		}

		records = append(records, listing.Reservations...)
		if listing.Total != nil && listing.PageSize != nil && *listing.PageSize > 0 {
			totalPages = (*listing.Total + *listing.PageSize - 1) / *listing.PageSize
		}

		slog.InfoContext(
			ctx, "fetched reservations page",
			"page", page,
			"total_pages", totalPages,
			"accumulated", len(records),
		)

		page++
		if page <= totalPages {
			if err := c.pageDelay(ctx); err != nil {
				return nil, err
			}
		}
	}

	return records, nil
}

func (c *Client) jitterDelay(ctx context.Context) error {
	ms, err := random.IntRange(minPageDelayMs, maxPageDelayMs)
	if err != nil {
		ms = minPageDelayMs
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
