package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"staysync/lib/config"
	"staysync/lib/resstore"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// portalFixture serves the minimal portal surface one fetch run
// touches and records which paths were hit.
func portalFixture(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		switch r.URL.Path {
		case "/owner/api-token":
			require.Contains(t, r.Header.Get("cookie"), "TrackOwner=xyz")
			w.Header().Set("content-type", "application/json")
			w.Write([]byte(`{"success": true, "token": "tok-1", "expires": "2026-12-31T00:00:00Z"}`))
		case "/owner/reservations/search":
			require.Equal(t, "Bearer tok-1", r.Header.Get("authorization"))
			w.Header().Set("content-type", "application/json")
			w.Write([]byte(`{
				"total": 2,
				"pageSize": 100,
				"reservations": [
					{"id": 1, "unitName": "Beach House", "arrivalDate": "2026-07-01", "departureDate": "2026-07-08"},
					{"id": 2, "unitName": "Cabin", "arrivalDate": "2026-08-01", "departureDate": "2026-08-03"}
				]
			}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &paths
}

func TestRunWithSessionCookie(t *testing.T) {
	server, paths := portalFixture(t)
	dir := t.TempDir()

	cfg := config.Config{
		Domain:        "example",
		PortalURL:     server.URL,
		SessionCookie: "TrackOwner=xyz",
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		OutputDir:     dir,
		OutputFile:    "reservations-2026.json",
	}

	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	// a supplied session cookie means the login flow is never touched
	require.Equal(t, []string{"/owner/api-token", "/owner/reservations/search"}, *paths)

	require.Len(t, result.Records, 2)
	require.Equal(t, int64(1), result.Records[0].ID)
	require.Equal(t, int64(2), result.Records[1].ID)
	require.Equal(t, filepath.Join(dir, "reservations-2026.json"), result.OutputPath)

	contents, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"id": 1, "unitName": "Beach House", "arrivalDate": "2026-07-01", "departureDate": "2026-07-08"},
		{"id": 2, "unitName": "Cabin", "arrivalDate": "2026-08-01", "departureDate": "2026-08-03"}
	]`, string(contents))
}

func TestRunArchivesWhenConfigured(t *testing.T) {
	server, _ := portalFixture(t)
	dir := t.TempDir()

	cfg := config.Config{
		Domain:        "example",
		PortalURL:     server.URL,
		SessionCookie: "TrackOwner=xyz",
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		OutputDir:     dir,
		OutputFile:    "reservations-2026.json",
		ArchiveDB:     filepath.Join(dir, "archive.db"),
	}

	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	store, err := resstore.Open(cfg.ArchiveDB)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, 2, runs[0].RecordCount)

	records, err := store.RunRecords(context.Background(), runs[0].ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestRunLoginFailureAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	dir := t.TempDir()

	cfg := config.Config{
		Domain:     "example",
		PortalURL:  server.URL,
		Username:   "owner@example.com",
		Password:   "hunter2",
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		OutputDir:  dir,
		OutputFile: "reservations-2026.json",
	}

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)

	// nothing partial is written on failure
	_, statErr := os.Stat(filepath.Join(dir, "reservations-2026.json"))
	require.True(t, os.IsNotExist(statErr))
}
