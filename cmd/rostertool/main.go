package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/config"
	"github.com/jacksonlee411/unit-roster/internal/logging"
	"github.com/jacksonlee411/unit-roster/internal/server"
	"github.com/jacksonlee411/unit-roster/modules/roster/services"
)

type app struct {
	configPath string
	logger     *zap.Logger
	sync       func()
	cfg        config.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "rostertool",
		Short:         "Offline maintenance for the unit roster dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			logger, sync, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg, a.logger, a.sync = cfg, logger, sync
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.sync != nil {
				a.sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.ConfigPathEnv+")")
	root.SetOut(out)

	root.AddCommand(a.validateCmd(), a.importCmd(), a.exportCmd(), a.statsCmd())
	return root
}

func (a *app) open(ctx context.Context) (*services.RosterService, func(), error) {
	return server.OpenRoster(ctx, a.cfg, a.logger, nil)
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that FILE would be accepted by upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := services.NewAdmissionRule(a.cfg.UploadRule)
			if err != nil {
				return err
			}
			svc := services.NewRosterService(services.RosterServiceOptions{Rule: rule, UploadMaxBytes: a.cfg.UploadMaxBytes})
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			records, err := svc.ParseUpload(&services.UploadFile{Name: filepath.Base(args[0]), Reader: f})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records\n", args[0], len(records))
			return err
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "import --scope SCOPE FILE",
		Short: "Replace the stored dataset with FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := a.open(cmd.Context())
			defer cleanup()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			n, err := svc.Upload(cmd.Context(), services.UploadRequest{
				Scope: scope,
				File:  &services.UploadFile{Name: filepath.Base(args[0]), Reader: f},
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
			return err
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "root unit scope (required)")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored dataset document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := a.open(cmd.Context())
			defer cleanup()
			if err != nil {
				return err
			}
			_, rc, err := svc.Download(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			_, err = io.Copy(w, rc)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-unit counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := a.open(cmd.Context())
			defer cleanup()
			if err != nil {
				return err
			}
			view, err := svc.List(cmd.Context(), unit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "CODE\tNAME\tCOUNT")
			for _, s := range view.Stats {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Code, s.Name, s.Count)
			}
			_, _ = fmt.Fprintf(tw, "TOTAL\t%s\t%d\n", view.FilterUnit, view.Total)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "count the listing for one unit only")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
