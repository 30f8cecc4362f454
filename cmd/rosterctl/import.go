package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cleanops/internal/domain/roster"
	"cleanops/internal/platform/config"
	"cleanops/internal/platform/db"
	"cleanops/internal/platform/jobs"
)

type importOptions struct {
	companyID uuid.UUID
	migrate   bool
	dryRun    bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions
	var company string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a roster workbook for one company in a single transaction",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			company = strings.TrimSpace(company)
			if company == "" {
				if opts.dryRun {
					return nil
				}
				return fmt.Errorf("--company is required unless --dry-run is set")
			}
			id, err := uuid.Parse(company)
			if err != nil {
				return fmt.Errorf("invalid --company: %w", err)
			}
			opts.companyID = id
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseFile(args[0])
			if err != nil {
				return err
			}
			if opts.dryRun {
				return printParse(cmd.OutOrStdout(), parsed, false)
			}
			result, err := runImport(cmd.Context(), config.Load(), opts, filepath.Base(args[0]), parsed)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported teams=%d employees=%d clients=%d dropped_client_rows=%d\n",
				result.Teams, result.Employees, result.Clients, parsed.DroppedClientRows)
			return err
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Company UUID (required unless --dry-run)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Apply pending migrations before importing")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse only and print the summary")
	return cmd
}

func runImport(ctx context.Context, cfg config.Config, opts importOptions, fileName string, parsed roster.ParseResult) (roster.ImportResult, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return roster.ImportResult{}, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return roster.ImportResult{}, fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if opts.migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return roster.ImportResult{}, fmt.Errorf("migrations: %w", err)
		}
	}

	service := roster.NewService(roster.NewStore(pool))
	companyID := opts.companyID.String()
	out, err := jobs.New(pool).Track(ctx, jobs.Spec{
		CompanyID: companyID,
		Source:    jobs.SourceCLI,
		FileName:  fileName,
	}, func(ctx context.Context) (any, error) {
		return service.ImportRoster(ctx, companyID, parsed.Employees, parsed.Clients)
	})
	if err != nil {
		slog.Error("roster import failed", "companyId", companyID, "file", fileName, "err", err)
		return roster.ImportResult{}, err
	}
	result, _ := out.(roster.ImportResult)
	return result, nil
}
