package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"comparador/internal/cache"
	"comparador/internal/config"
	"comparador/internal/dataset"
	"comparador/internal/domain"
	"comparador/internal/export"
	"comparador/internal/filter"
	"comparador/internal/http/handlers"
	applog "comparador/internal/log"
	"comparador/internal/normalize"
	"comparador/internal/repos"
	"comparador/internal/services"
	"comparador/internal/sorting"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "comparador",
		Short: "Comparador - marketplace product comparison",
		Long: `Comparador merges product listings from AliExpress, Temu and Shopify
into one catalog that can be filtered, sorted and exported.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Comparador v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
		},
	})

	root.AddCommand(queryCmd(), importCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config, installs the logger and builds a loaded catalog.
// The returned cleanup closes database handles and flushes logs.
func setup(ctx context.Context) (config.Config, *services.CatalogService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := applog.Init(applog.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		return cfg, nil, nil, fmt.Errorf("logger: %w", err)
	}
	logger := applog.L()

	var payloads *cache.Payloads
	if cfg.RedisAddr != "" {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			// remote datasets are still fetched, just never cached
			logger.Warn("cache.unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			payloads = cache.NewPayloads(client, cfg.CacheTTL)
		}
	}

	sets, err := config.LoadDatasets(cfg.DatasetsFile, cfg.DataDir)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("datasets: %w", err)
	}
	builder := &dataset.Builder{
		Client:     &http.Client{Timeout: cfg.FetchTimeout},
		Limiter:    rate.NewLimiter(rate.Limit(cfg.FetchRPS), 1),
		Cache:      payloads,
		DefaultDSN: cfg.DBDSN,
	}
	cleanup := func() {
		if err := builder.Close(); err != nil {
			logger.Warn("db.close", zap.Error(err))
		}
		applog.Sync()
	}
	datasets, err := builder.Build(ctx, sets)
	if err != nil {
		cleanup()
		return cfg, nil, nil, err
	}

	policy := normalize.ZeroIsMissing
	if !cfg.ZeroAsMissing {
		policy = normalize.ZeroIsValue
	}
	loader := &dataset.Loader{
		Normalizer:  &normalize.Normalizer{Policy: policy, LooseOffers: cfg.LooseOfferText},
		Concurrency: cfg.FetchConcurrency,
		Timeout:     cfg.FetchTimeout,
		Logger:      logger,
	}
	catalog := services.NewCatalogService(loader, datasets, payloads)
	if _, err := catalog.Load(ctx); err != nil {
		cleanup()
		return cfg, nil, nil, err
	}
	return cfg, catalog, cleanup, nil
}

func serve(ctx context.Context) error {
	cfg, catalog, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	app := handlers.NewApp(handlers.NewViews(cfg.TemplatesDir), handlers.AppOptions{})
	app.Static("/static", "./web/static")
	handlers.Mount(app, handlers.NewDeps(cfg, catalog))

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()
	applog.L().Info("server.start", zap.String("addr", ":"+cfg.Port))
	return app.Listen(":" + cfg.Port)
}

func queryCmd() *cobra.Command {
	var (
		spec         filter.Spec
		marketplaces []string
		sortKey      string
		format       string
		output       string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter and sort the catalog and print the export rows",
		Example: `  comparador query --marketplace temu --max 30 --sort price_total_asc
  comparador query -q auriculares --format json -o auriculares.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := sorting.Key(sortKey)
			if key != "" && !key.Valid() {
				return fmt.Errorf("unknown sort key %q", sortKey)
			}
			if len(marketplaces) == 0 {
				spec.Marketplaces = filter.Default().Marketplaces
			}
			for _, m := range marketplaces {
				mp, ok := domain.ParseMarketplace(m)
				if !ok {
					return fmt.Errorf("unknown marketplace %q", m)
				}
				spec.Marketplaces = append(spec.Marketplaces, mp)
			}

			_, catalog, cleanup, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			products, err := catalog.Query(spec, key)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return export.Write(w, export.ParseFormat(format), export.Rows(products))
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&spec.Query, "query", "q", "", "Text matched against title and brand")
	fl.StringSliceVarP(&marketplaces, "marketplace", "m", nil, "Marketplaces to include (default all)")
	fl.StringVar(&spec.Brand, "brand", "", "Exact brand")
	fl.StringVar(&spec.PriceMin, "min", "", "Minimum total price")
	fl.StringVar(&spec.PriceMax, "max", "", "Maximum total price")
	fl.StringVar(&spec.MaxShippingDays, "max-days", "", "Maximum shipping days")
	fl.BoolVar(&spec.OnlyOffers, "offers", false, "Only offers")
	fl.StringVar(&sortKey, "sort", "", "Sort key: "+strings.Join(presetNames(), ", "))
	fl.StringVar(&format, "format", "csv", "Output format (csv, json)")
	fl.StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func importCmd() *cobra.Command {
	var dsn, format string
	cmd := &cobra.Command{
		Use:   "import <file> <table>",
		Short: "Copy a JSON or CSV dataset into a database table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dsn == "" {
				dsn = cfg.DBDSN
			}
			records, err := dataset.FileSource{Path: args[0], Format: dataset.Format(format)}.Fetch(ctx)
			if err != nil {
				return err
			}
			db, err := repos.OpenDB(ctx, dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			n, err := repos.NewRawRepo(db).Import(ctx, args[1], records)
			if err != nil {
				return err
			}
			applog.L().Info("dataset.import", zap.String("file", args[0]), zap.String("table", args[1]), zap.Int("rows", n))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s\n", n, args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN (default $DB_DSN)")
	cmd.Flags().StringVar(&format, "format", "", "Input format (json, csv); inferred from the extension when empty")
	return cmd
}

func presetNames() []string {
	var names []string
	for _, k := range sorting.Presets() {
		names = append(names, string(k))
	}
	return names
}
