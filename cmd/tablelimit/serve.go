package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/manojoshi/tablelimit/httpapi"
)

type serveOpts struct {
	addr   string
	tables string
}

func newServeCmd(root *rootOpts) *cobra.Command {
	opts := &serveOpts{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the row files of a directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address, overrides http.addr")
	cmd.Flags().StringVar(&opts.tables, "tables", "", "row file directory, overrides http.tables_dir")
	return cmd
}

func runServe(ctx context.Context, root *rootOpts, opts *serveOpts) error {
	cfg := root.cfg
	addr, dir := cfg.HTTP.Addr, cfg.HTTP.TablesDir
	if opts.addr != "" {
		addr = opts.addr
	}
	if opts.tables != "" {
		dir = opts.tables
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.WithError(err).Warn("closing state store")
		}
	}()

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	srv, err := httpapi.New(
		httpapi.WithStore(store),
		httpapi.WithRepository(cfg.Repository(reg)),
		httpapi.WithRequestContext(cfg.RequestContext()),
		httpapi.WithMaxRows(cfg.MaxRows),
	)
	if err != nil {
		return err
	}

	tables, err := loadTables(dir)
	if err != nil {
		return err
	}
	for id, rows := range tables {
		srv.AddTable(id, rows)
		log.WithFields(log.Fields{"table": id, "rows": len(rows)}).Info("loaded table")
	}

	e := srv.Echo()
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("serving")
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
