package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/config"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/engine"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/watch"
)

var (
	flagInterval    string
	flagWatchTF     string
	flagMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Gather on a schedule and serve metrics",
	Long: `Run a gather cycle immediately and then on every interval. Edits to the
config file are picked up without a restart. Prometheus metrics are served on
--metrics-addr at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		interval := cfg.IntervalDuration()
		if flagInterval != "" {
			interval, err = config.ParseDuration(flagInterval)
			if err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		current, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		var mu sync.Mutex
		defer func() {
			mu.Lock()
			current.Close()
			mu.Unlock()
		}()

		cycle := func(ctx context.Context) {
			mu.Lock()
			a := current
			mu.Unlock()

			tf, err := timeframeFlag(flagWatchTF, a.cfg.DefaultTimeframe())
			if err != nil {
				logger.Error("bad timeframe", zap.Error(err))
				return
			}
			r, err := a.engine.GatherIntelligence(ctx, tf)
			if err != nil && !errors.Is(err, engine.ErrPersist) {
				logger.Error("gather failed", zap.Error(err))
				return
			}
			logger.Info("cycle finished",
				zap.String("report_id", r.ReportID),
				zap.Int("alerts", r.TotalAlerts),
				zap.Int("critical", len(r.CriticalAlerts)),
				zap.Bool("saved", err == nil),
			)
		}

		reload := func() error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			next, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			mu.Lock()
			prev := current
			current = next
			mu.Unlock()
			return prev.Close()
		}

		if flagMetricsAddr != "" {
			srv := &http.Server{Addr: flagMetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server stopped", zap.Error(err))
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			logger.Info("serving metrics", zap.String("addr", flagMetricsAddr))
		}

		configPath := flagConfig
		if configPath == "" {
			configPath = config.DefaultConfigPath()
		}
		s := watch.New(cycle, reload, watch.Options{
			Interval:   interval,
			ConfigPath: configPath,
			Logger:     logger.Named("watch"),
		})
		return s.Run(ctx)
	},
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func init() {
	watchCmd.Flags().StringVar(&flagInterval, "interval", "", "time between cycles, e.g. 30m, 1h (default from config)")
	watchCmd.Flags().StringVarP(&flagWatchTF, "timeframe", "t", "", "recency window: 1h, 6h, 24h or 7d (default from config)")
	watchCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", ":9464", "address for the Prometheus endpoint; empty disables it")
}
