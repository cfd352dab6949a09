package cmd

import (
	"context"
	"errors"
	"sort"

	"emby-tagger/core/metrics"
	"emby-tagger/feature/servers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the database, archive and active server",
	Long:  `Checks that the database schema matches the catalog models, that the report archive bucket exists and that the active server answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the report archive bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// remoteCmd represents the integrity remote command
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Check that the active server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(schemaCmd, storageCmd, remoteCmd)

	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket if missing")
}

func runIntegrityChecks(ctx context.Context, runSchema, runStorage, runRemote bool) error {
	a, err := bootstrap(metrics.Nop{}, false)
	if err != nil {
		return err
	}
	logg := a.logger
	defer logg.Sync()
	svc := a.integrity

	if runSchema {
		logg.Info("Checking database schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Error("Schema check failed", zap.Error(err))
		} else if report.Matched {
			logg.Info("Database schema matches the catalog models.")
		} else {
			logg.Warn("Database schema mismatches found")
			tables := make([]string, 0, len(report.Tables))
			for table := range report.Tables {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			for _, table := range tables {
				tblReport := report.Tables[table]
				if tblReport.Status != "ok" {
					logg.Warn("Missing Columns",
						zap.String("table", table),
						zap.String("status", tblReport.Status),
						zap.Strings("columns", tblReport.MissingColumns),
					)
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
			logg.Info("Run any other command to migrate the schema.")
		}
	}

	if runStorage {
		if !svc.StorageEnabled() {
			logg.Info("Report archive disabled, skipping storage check.")
		} else {
			logg.Info("Checking report archive bucket...")
			report, err := svc.CheckStorage(ctx)
			if err != nil {
				return err
			}

			switch {
			case report.Exists:
				logg.Info("Report archive bucket is present.",
					zap.String("bucket", report.Bucket),
					zap.Bool("has_reports", report.HasReports),
				)
			case fixFlag:
				logg.Info("Creating report archive bucket...", zap.String("bucket", report.Bucket))
				if err := svc.FixStorage(ctx); err != nil {
					return err
				}
				logg.Info("Report archive bucket created.")
			default:
				logg.Warn("Report archive bucket is missing", zap.String("bucket", report.Bucket))
				logg.Info("Run 'integrity storage --fix' to create it.")
			}
		}
	}

	if runRemote {
		logg.Info("Checking active server...")
		report, err := svc.CheckRemote(ctx)
		switch {
		case errors.Is(err, servers.ErrNoActiveServer):
			logg.Warn("No active server configured.")
		case err != nil:
			return err
		case !report.Reachable:
			logg.Warn("Active server is unreachable",
				zap.String("name", report.Name),
				zap.String("url", report.URL),
				zap.String("error", report.Error),
			)
		case !report.IDMatches:
			logg.Warn("Active server answers with a different server id",
				zap.String("name", report.Name),
				zap.String("remote_id", report.Info.ID),
			)
		default:
			logg.Info("Active server is reachable",
				zap.String("name", report.Name),
				zap.String("version", report.Info.Version),
			)
		}
	}

	return nil
}
