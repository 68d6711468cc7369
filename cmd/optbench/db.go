package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/optbench/internal/catalog"
	"github.com/jackzampolin/optbench/internal/config"
	"github.com/jackzampolin/optbench/internal/shopify"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the SQLite product cache",
}

var dbSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync products from the Shopify Admin API into the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client, err := shopify.NewClient(shopify.Config{
			ShopURL:     cfg.Shopify.ShopURL,
			AccessToken: cfg.ResolveShopifyToken(),
			APIVersion:  cfg.Shopify.APIVersion,
		})
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := store.Sync(cmd.Context(), client)
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics and recent sync history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		count, err := store.Count(ctx)
		if err != nil {
			return err
		}
		prices, err := store.PriceRange(ctx)
		if err != nil {
			return err
		}
		history, err := store.SyncHistory(ctx, 10)
		if err != nil {
			return err
		}

		return printResult(struct {
			Products   int                 `json:"products" yaml:"products"`
			PriceRange *catalog.PriceRange `json:"price_range" yaml:"price_range"`
			SyncLog    []catalog.SyncEntry `json:"sync_log" yaml:"sync_log"`
		}{count, prices, history})
	},
}

var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached products",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		deleted, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d products\n", deleted)
		return nil
	},
}

func openStore(cfg *config.Config) (*catalog.Store, error) {
	path := cfg.Catalog.Path
	if path == "" {
		path = "optbench.db"
	}
	return catalog.Open(path)
}

func init() {
	dbCmd.AddCommand(dbSyncCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.AddCommand(dbClearCmd)
}
