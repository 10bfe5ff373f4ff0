package commands

import (
	"fmt"
	"os"
	"staysync/lib/config"
	"staysync/lib/pipeline"
	"staysync/lib/restyutil"
	"staysync/lib/scrapers/ownerportal"
	"staysync/lib/stats"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var fetchFlags struct {
	domain        string
	portalUrl     string
	username      string
	password      string
	sessionCookie string
	start         string
	end           string
	output        string
	outputDir     string
	archiveDb     string
	debugDump     string
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&fetchFlags.domain, "domain", "", "Portal subdomain, e.g. \"acme\" for acme.trackhs.com.")
	f.StringVar(&fetchFlags.portalUrl, "portal-url", "", "Full portal URL override; normally derived from --domain.")
	f.StringVar(&fetchFlags.username, "username", "", "Portal login username.")
	f.StringVar(&fetchFlags.password, "password", "", "Portal login password.")
	f.StringVar(&fetchFlags.sessionCookie, "session-cookie", "", "Pre-obtained session cookie (e.g. \"TrackOwner=...\"); skips login.")
	f.StringVar(&fetchFlags.start, "start", "", "Range start date (YYYY-MM-DD), defaults to Jan 1 of the current year.")
	f.StringVar(&fetchFlags.end, "end", "", "Range end date (YYYY-MM-DD), defaults to Dec 31 of the current year.")
	f.StringVar(&fetchFlags.output, "output", "", "Output file name, defaults to reservations-<year>.json.")
	f.StringVar(&fetchFlags.outputDir, "output-dir", "", "Output directory, created if absent.")
	f.StringVar(&fetchFlags.archiveDb, "archive-db", "", "Optional sqlite file to archive completed runs into.")
	f.StringVar(&fetchFlags.debugDump, "debug-dump", "", "Directory to dump raw HTTP transcripts into.")
	rootCmd.AddCommand(fetchCmd)
}

func buildConfig() (config.Config, error) {
	start, err := config.ParseDate(fetchFlags.start)
	if err != nil {
		return config.Config{}, err
	}
	end, err := config.ParseDate(fetchFlags.end)
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.FromEnv().Merge(config.Config{
		Domain:        fetchFlags.domain,
		PortalURL:     fetchFlags.portalUrl,
		Username:      fetchFlags.username,
		Password:      fetchFlags.password,
		SessionCookie: fetchFlags.sessionCookie,
		StartDate:     start,
		EndDate:       end,
		OutputFile:    fetchFlags.output,
		OutputDir:     fetchFlags.outputDir,
		ArchiveDB:     fetchFlags.archiveDb,
	})
	return cfg.Finalize(time.Now())
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches reservations from the owner portal and writes them to a JSON file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		if fetchFlags.debugDump != "" {
			ownerportal.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(fetchFlags.debugDump))
		}

		result, err := pipeline.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		summary := stats.Aggregate(result.Records)
		fmt.Fprintf(os.Stdout, "wrote %s\n", result.OutputPath)
		fmt.Fprint(os.Stdout, summary.Render())
		return nil
	},
}
