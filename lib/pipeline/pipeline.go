// Package pipeline runs one end-to-end fetch: authenticate, acquire
// the api token, page through the reservations listing and persist
// the result. Every stage failure aborts the run; nothing partial is
// written.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"staysync/lib/config"
	"staysync/lib/reservation"
	"staysync/lib/resstore"
	"staysync/lib/scrapers/ownerportal"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("pipeline")

type Result struct {
	Records    []reservation.Record
	OutputPath string
}

// Run executes the whole fetch pipeline with a finalized Config.
func Run(ctx context.Context, cfg config.Config) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline:Run")
	defer span.End()

	client, err := ownerportal.NewClient(ctx, ownerportal.ClientOptions{
		Domain:        cfg.Domain,
		BaseUrl:       cfg.PortalURL,
		SessionCookie: cfg.SessionCookie,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct portal client")
		return Result{}, err
	}

	// a supplied session cookie bypasses the login flow entirely
	if client.HasSession() {
		slog.InfoContext(ctx, "using supplied session cookie, skipping login")
	} else {
		slog.InfoContext(ctx, "logging in", "domain", cfg.Domain, "username", cfg.Username)
		if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "login failed")
			return Result{}, err
		}
	}

	if _, err := client.FetchAPIToken(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token acquisition failed")
		return Result{}, err
	}

	raws, err := client.FetchReservations(ctx, cfg.StartDate, cfg.EndDate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation fetch failed")
		return Result{}, err
	}

	outputPath, err := persist(cfg, raws)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist results")
		return Result{}, err
	}
	slog.InfoContext(ctx, "wrote reservations", "path", outputPath, "count", len(raws))

	if cfg.ArchiveDB != "" {
		if err := archive(ctx, cfg, raws); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to archive run")
			return Result{}, err
		}
	}

	records, err := reservation.DecodeAll(raws)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode fetched records")
		return Result{}, err
	}

	return Result{Records: records, OutputPath: outputPath}, nil
}

func persist(cfg config.Config, raws []json.RawMessage) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", err
	}

	// the records stay verbatim; an empty result is an empty array,
	// not null
	if raws == nil {
		raws = []json.RawMessage{}
	}
	contents, err := json.Marshal(raws)
	if err != nil {
		return "", err
	}

	outputPath := filepath.Join(cfg.OutputDir, cfg.OutputFile)
	if err := os.WriteFile(outputPath, contents, 0644); err != nil {
		return "", err
	}
	return outputPath, nil
}

func archive(ctx context.Context, cfg config.Config, raws []json.RawMessage) error {
	store, err := resstore.Open(cfg.ArchiveDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runId, err := store.SaveRun(ctx, cfg.StartDate, cfg.EndDate, raws)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "archived run", "db", cfg.ArchiveDB, "run_id", runId)
	return nil
}
