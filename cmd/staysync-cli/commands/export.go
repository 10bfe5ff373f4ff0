package commands

import (
	"fmt"
	"os"
	"staysync/lib/config"
	"staysync/lib/export/csvexport"
	"staysync/lib/export/icalexport"
	"staysync/lib/reservation"

	"github.com/spf13/cobra"
)

var exportFlags struct {
	input   string
	output  string
	publish bool
	bucket  string
	object  string
}

func init() {
	pf := exportCmd.PersistentFlags()
	pf.StringVar(&exportFlags.input, "input", "", "Persisted reservations JSON file to export from.")
	pf.StringVar(&exportFlags.output, "output", "", "File to write, stdout when omitted.")
	exportCmd.MarkPersistentFlagRequired("input")

	icalCmd.Flags().BoolVar(&exportFlags.publish, "publish", false, "Also upload the calendar to object storage.")
	icalCmd.Flags().StringVar(&exportFlags.bucket, "bucket", "", "Bucket to publish into (defaults to STAYSYNC_S3_BUCKET).")
	icalCmd.Flags().StringVar(&exportFlags.object, "object", "reservations.ics", "Object name to publish under.")

	exportCmd.AddCommand(csvCmd)
	exportCmd.AddCommand(icalCmd)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-exports a persisted fetch result without touching the portal.",
}

func exportOutput() (*os.File, func(), error) {
	if exportFlags.output == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(exportFlags.output)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

var csvCmd = &cobra.Command{
	Use:   "csv --input <reservations.json> [--output <file.csv>]",
	Short: "Exports reservations as spreadsheet rows.",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := reservation.ReadFile(exportFlags.input)
		if err != nil {
			return err
		}
		out, done, err := exportOutput()
		if err != nil {
			return err
		}
		defer done()
		return csvexport.Write(out, records)
	},
}

var icalCmd = &cobra.Command{
	Use:   "ical --input <reservations.json> [--output <file.ics>] [--publish]",
	Short: "Exports reservations as a calendar, optionally publishing it to object storage.",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := reservation.ReadFile(exportFlags.input)
		if err != nil {
			return err
		}
		calendar, err := icalexport.Render(records)
		if err != nil {
			return err
		}

		out, done, err := exportOutput()
		if err != nil {
			return err
		}
		defer done()
		if _, err := fmt.Fprint(out, calendar); err != nil {
			return err
		}

		if !exportFlags.publish {
			return nil
		}
		cfg := config.FromEnv().Merge(config.Config{
			S3Bucket: exportFlags.bucket,
		})
		publisher, err := icalexport.NewPublisher(icalexport.PublishOptions{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    !cfg.S3Insecure,
		})
		if err != nil {
			return err
		}
		return publisher.Publish(cmd.Context(), exportFlags.object, calendar)
	},
}
