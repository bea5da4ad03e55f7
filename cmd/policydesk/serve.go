package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/policydesk"
	"github.com/eringen/policydesk/views"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var (
	seedCount int
	seedPrintSlugs  bool
)

// seedCmd fills the database with fabricated articles.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert fabricated articles into the database",
	RunE:  runSeed,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 20, "number of articles to create")
	seedCmd.Flags().BoolVar(&seedPrintSlugs, "slugs", false, "print the slug of every created article")
}

func newApp() (*policydesk.App, error) {
	cfg, err := policydesk.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	return policydesk.New(cfg, views.Funcs()), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Run(cmd.Context())
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedCount < 1 {
		return fmt.Errorf("count must be positive, got %d", seedCount)
	}
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.Init(); err != nil {
		return err
	}
	articles, err := app.Seed(seedCount)
	if err != nil {
		return err
	}
	if seedPrintSlugs {
		for _, a := range articles {
			fmt.Fprintln(cmd.OutOrStdout(), a.Slug)
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "created %d articles\n", len(articles))
	return nil
}
