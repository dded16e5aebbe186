package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"magnet-bot/internal/bot"
	"magnet-bot/internal/chat/telegram"
	"magnet-bot/internal/config"
	"magnet-bot/internal/downloader"
	apphttp "magnet-bot/internal/http"
	"magnet-bot/internal/metrics"
	"magnet-bot/internal/render"
	"magnet-bot/internal/sysinfo"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:           "magnet-bot",
		Short:         "Control a qBittorrent instance from Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	root.AddCommand(newRenderCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger every subcommand shares.
func setup(offline bool) (config.Config, *logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	validate := cfg.Validate
	if offline {
		validate = cfg.ValidateBackend
	}
	if err := validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid config: %w", err)
	}

	level, _ := logrus.ParseLevel(cfg.Log.Level)
	logger.SetLevel(level)
	return cfg, logger, nil
}

// app holds the collaborators both the bot and the render command need.
type app struct {
	torrents downloader.Client
	renderer *render.Chrome
	bot      *bot.Bot
	shutdown func()
}

func buildApp(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*app, error) {
	torrents, stopTorrents, err := buildTorrents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	stylesheet, err := render.LoadStylesheet(cfg.Render.Stylesheet)
	if err != nil {
		stopTorrents()
		return nil, err
	}

	renderer := render.NewChrome(ctx, render.ChromeConfig{
		ExecPath:   cfg.Render.ChromePath,
		OutputPath: cfg.Render.Output,
		Timeout:    cfg.RenderTimeout(),
		Logger:     logger,
	})

	var freeSpace func() (uint64, error)
	if cfg.Download.SavePath != "" {
		path := cfg.Download.SavePath
		freeSpace = func() (uint64, error) { return sysinfo.FreeSpace(path) }
	}

	b, err := bot.New(bot.Config{
		Torrents:   torrents,
		Renderer:   renderer,
		Stylesheet: stylesheet,
		TempDir:    cfg.Download.TempDir,
		FreeSpace:  freeSpace,
		Logger:     logger,
	})
	if err != nil {
		renderer.Close()
		stopTorrents()
		return nil, err
	}

	return &app{
		torrents: torrents,
		renderer: renderer,
		bot:      b,
		shutdown: func() {
			renderer.Close()
			stopTorrents()
		},
	}, nil
}

func buildTorrents(ctx context.Context, cfg config.Config, logger *logrus.Logger) (downloader.Client, func(), error) {
	switch cfg.Downloader.Backend {
	case config.BackendEmbedded:
		manager := downloader.NewManager(downloader.Config{
			DownloadRoot: cfg.Download.DataDir,
			Seed:         cfg.Download.Seed,
			Logger:       logger,
		})
		if err := manager.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("start manager: %w", err)
		}
		return manager, manager.Shutdown, nil
	default:
		client := downloader.NewQBittorrent(downloader.QBittorrentConfig{
			Host:     cfg.QBittorrent.Host,
			Username: cfg.QBittorrent.Username,
			Password: cfg.QBittorrent.Password,
			Logger:   logger,
		})
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}
}

func runBot(ctx context.Context) error {
	cfg, logger, err := setup(false)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.shutdown()

	metrics.Register()

	transport, err := telegram.New(telegram.Config{
		Token:    cfg.Telegram.Token,
		UserID:   cfg.Telegram.UserID,
		Proxy:    cfg.Telegram.Proxy,
		SendRate: cfg.Telegram.SendRate,
		Debug:    cfg.Telegram.Debug,
		Commands: bot.CommandMenu(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if err := transport.RegisterCommands(ctx); err != nil {
		logger.Warnf("register commands: %v", err)
	}

	var srv *http.Server
	if cfg.Server.Addr != "" {
		srv = startAdminServer(cfg.Server.Addr, a.torrents, logger)
	}

	runErr := transport.Run(ctx, a.bot)
	logger.Info("shutting down...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
	}

	logger.Info("bye")
	return runErr
}

func startAdminServer(addr string, torrents downloader.Client, logger *logrus.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	apphttp.NewHandler(torrents).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("admin api listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server: %v", err)
		}
	}()
	return srv
}
