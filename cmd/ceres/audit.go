package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"macrolog-hq/ceres/pkg/audit"
	"macrolog-hq/ceres/pkg/cli"
	"macrolog-hq/ceres/pkg/config"
)

var auditFlags struct {
	timeRange string
	route     string
	status    int
	limit     int
	offset    int
	format    string
	output    string
	olderThan int
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the request audit trail",
	Long: `Query and maintain the request audit trail.

The audit command provides access to the audit database for querying
request history and pruning old records.

Subcommands:
  query - Query audit records with filters
  prune - Delete records older than the retention window

Examples:
  # Query the last day
  ceres audit query --time-range "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"

  # Filter by route
  ceres audit query --route "/barcode/{code}" --status 404

  # Export to CSV
  ceres audit query --format csv --output audit.csv

  # Prune records older than 30 days
  ceres audit prune --older-than 30`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"

Examples:
  # Query a specific time range
  ceres audit query --time-range "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"

  # Failed barcode lookups
  ceres audit query --route "/barcode/{code}" --status 404

  # Export to JSON
  ceres audit query --format json --output audit.json`,
	RunE: queryAudit,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old audit records",
	Long: `Delete audit records older than the retention window.

Uses the configured retention_days unless --older-than is given.`,
	RunE: pruneAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditPruneCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	auditQueryCmd.Flags().StringVar(&auditFlags.route, "route", "", "filter by route pattern")
	auditQueryCmd.Flags().IntVar(&auditFlags.status, "status", 0, "filter by HTTP status code")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, csv")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")

	auditPruneCmd.Flags().IntVar(&auditFlags.olderThan, "older-than", 0, "delete records older than N days (default: configured retention_days)")
}

// openAuditStorage loads the configuration and opens the audit database.
func openAuditStorage() (*audit.SQLiteStorage, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}

	sqliteConfig := audit.DefaultSQLiteConfig()
	if cfg.Audit.SQLitePath != "" {
		sqliteConfig.Path = cfg.Audit.SQLitePath
	}

	store, err := audit.NewSQLiteStorage(sqliteConfig)
	if err != nil {
		return nil, cli.NewCommandError("audit", fmt.Errorf("failed to open audit storage: %w", err))
	}
	return store, nil
}

func queryAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	query := &audit.Query{
		Route:  auditFlags.route,
		Status: auditFlags.status,
		Limit:  auditFlags.limit,
		Offset: auditFlags.offset,
	}

	if auditFlags.timeRange != "" {
		parts := strings.Split(auditFlags.timeRange, "/")
		if len(parts) != 2 {
			return fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if auditFlags.output != "" {
		output, err = os.Create(auditFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch auditFlags.format {
	case "json":
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(output, records)
	case "csv":
		formatter := cli.NewFormatter(cli.FormatCSV)
		return formatter.FormatTo(output, recordTable(records))
	default:
		return outputAuditText(output, records, query)
	}
}

func outputAuditText(output *os.File, records []*audit.Record, query *audit.Query) error {
	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Timestamp: %s\n", record.Time.Format(time.RFC3339))
		fmt.Fprintf(output, "Request: %s %s -> %d (%dms)\n",
			record.Method, record.Path, record.Status, record.DurationMs)
		if record.Query != "" {
			fmt.Fprintf(output, "Lookup: %s\n", record.Query)
		}
		if record.Error != "" {
			fmt.Fprintf(output, "Error: %s\n", record.Error)
		}

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func pruneAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	cfg, err := config.GetConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	days := auditFlags.olderThan
	if days <= 0 {
		days = cfg.Audit.RetentionDays
	}
	if days <= 0 {
		return fmt.Errorf("no retention window: set --older-than or audit.retention_days")
	}

	pruner := audit.NewPruner(store, &audit.RetentionConfig{RetentionDays: days})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	fmt.Printf("✓ Deleted %d records older than %d days\n", deleted, days)
	return nil
}

// recordTable adapts audit records to the cli.Tabular interface for CSV
// output.
type recordTable []*audit.Record

func (recordTable) Headers() []string {
	return []string{"id", "request_id", "time", "method", "path", "route", "query", "status", "duration_ms", "client_ip", "error"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.ID,
			r.RequestID,
			r.Time.Format(time.RFC3339),
			r.Method,
			r.Path,
			r.Route,
			r.Query,
			strconv.Itoa(r.Status),
			strconv.FormatInt(r.DurationMs, 10),
			r.ClientIP,
			r.Error,
		})
	}
	return rows
}
