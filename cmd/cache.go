package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/conceptnav/internal/infrastructure/sqlite"
	"github.com/zjrosen/conceptnav/internal/log"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the durable response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored registry response",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, err := sqlite.NewDB(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	responses := db.ResponseCache(0)
	n, err := responses.Count(ctx)
	if err != nil {
		return err
	}
	if err := responses.Clear(ctx); err != nil {
		return err
	}

	log.Info(log.CatCache, "cleared response cache", "path", db.Path(), "responses", n)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached responses from %s\n", n, db.Path())
	return err
}
