package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"StockForecast/internal/config"
	"StockForecast/internal/logger"
	"StockForecast/internal/notifier"
	"StockForecast/internal/scheduler"
	"StockForecast/internal/web"
)

func loadConfig(cmd *cli.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, a.collector, a.memo, a.service, sender, a.recorder, cfg.Schedule.Watchlist, log)
	if err := sched.Register(cfg.Schedule.PrewarmCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}
	if os.Getenv("RUN_ON_START") == "true" {
		go sched.Prewarm(ctx)
	}

	srv := web.NewServer(cfg.Server.Addr, a.service, a.collector, a.recorder, cfg.DataSource.DefaultTicker, log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	return nil
}

func forecastAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ticker := cmd.String("ticker")
	if ticker == "" {
		ticker = cfg.DataSource.DefaultTicker
	}
	d, err := a.service.Build(ctx, ticker, int(cmd.Int("years")))
	if err != nil {
		return err
	}
	fmt.Println(renderForecast(d))
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML config file",
		Value:   "configs/config.yaml",
		Sources: cli.EnvVars("CONFIG_PATH"),
	}

	cmd := &cli.Command{
		Name:  "dashboard",
		Usage: "Stock price dashboard with moving averages and a forecast",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the web dashboard and the prewarm scheduler",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overrides server.addr",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "forecast",
				Usage: "Print the forecast tail and summary for a ticker",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:    "ticker",
						Aliases: []string{"t"},
						Usage:   "Ticker symbol as listed on finance.yahoo.com",
					},
					&cli.IntFlag{
						Name:    "years",
						Aliases: []string{"y"},
						Usage:   "Years of prediction (1-5)",
						Value:   1,
					},
				},
				Action: forecastAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
