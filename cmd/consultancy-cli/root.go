package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nurpe/aterrozero-consultancy/internal/app"
	"github.com/nurpe/aterrozero-consultancy/internal/auth"
	"github.com/nurpe/aterrozero-consultancy/internal/config"
	"github.com/nurpe/aterrozero-consultancy/internal/logger"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
	"github.com/nurpe/aterrozero-consultancy/internal/service"
)

var (
	verbose    bool
	outDir     string
	reportKind string
	search     string
	status     string
	tokenName  string
	tokenTTL   time.Duration
)

// rootCmd is the operator entry point. It reads the same app.env as the
// service and opens the same store.
var rootCmd = &cobra.Command{
	Use:           "consultancy-cli",
	Short:         "Operate the consultancy workspace from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List clients with their program status",
	Args:  cobra.NoArgs,
	RunE:  runClients,
}

var reportCmd = &cobra.Command{
	Use:   "report <client-id>",
	Short: "Write a PDF report for a client",
	Long: `Write a PDF report for a client into --out.

Kinds:
  diagnostic - client data, diagnostic, estimates and critical points
  full       - every section including indicators and program status`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var exportCmd = &cobra.Command{
	Use:   "export-indicators <client-id>",
	Short: "Write a client's monthly indicators to an .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue an access token signed with AUTH_JWT_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	clientsCmd.Flags().StringVarP(&search, "query", "q", "", "filter by company name or tax id")
	clientsCmd.Flags().StringVar(&status, "status", "", "not_started, in_progress or completed")

	reportCmd.Flags().StringVar(&reportKind, "kind", "full", "diagnostic or full")
	reportCmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	exportCmd.Flags().StringVar(&outDir, "out", ".", "output directory")

	tokenCmd.Flags().StringVar(&tokenName, "name", "", "display name claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(clientsCmd, reportCmd, exportCmd, tokenCmd)
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if verbose {
		log = logger.New(cfg.Environment).Output(os.Stderr)
	}
	return app.New(ctx, cfg, log)
}

func runClients(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	dashboard, err := a.Service.Dashboard(service.DashboardQuery{
		Search: search,
		Status: progress.StatusFilter(status),
	})
	if err != nil {
		return err
	}
	return printDashboard(cmd.OutOrStdout(), dashboard)
}

func printDashboard(out io.Writer, d service.Dashboard) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tTAX ID\tSTATUS\tPROGRAM\tDIAGNOSTIC\tINDICATORS")
	for _, row := range d.Rows {
		current := ""
		if d.CurrentClientID != nil && *d.CurrentClientID == row.Client.ID {
			current = " *"
		}
		diagnostic := "no"
		if row.HasDiagnostic {
			diagnostic = "yes"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%d%%\t%s\t%d\n",
			row.Client.ID, current, row.Client.CompanyName, row.Client.TaxID,
			row.Status.Label, row.ProgramPercent, diagnostic, row.IndicatorRecords)
	}
	fmt.Fprintf(w, "\ntotal %d, not started %d, in progress %d, completed %d\n",
		d.Total, d.NotStarted, d.InProgress, d.Completed)
	return w.Flush()
}

func runReport(cmd *cobra.Command, args []string) error {
	clientID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}
	kind, err := service.ParseReportKind(reportKind)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Service.GenerateReport(cmd.Context(), kind, clientID)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), result)
}

func runExport(cmd *cobra.Command, args []string) error {
	clientID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Service.ExportIndicators(cmd.Context(), clientID)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), result)
}

func writeResult(out io.Writer, result *service.ReportResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	name, err := localFileName(result.FileName)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, result.Content, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(result.Content))
	return nil
}

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// localFileName keeps a report file name inside the output directory.
// Company names may contain path separators.
func localFileName(name string) (string, error) {
	name = filepath.Base(pathSeparators.Replace(name))
	switch name {
	case ".", "..":
		return "", fmt.Errorf("invalid report file name %q", name)
	}
	return name, nil
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is not set")
	}

	now := time.Now()
	token, err := auth.NewParser(cfg.Auth.JWTSecret).Sign(args[0], tokenName, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
