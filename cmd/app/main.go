package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    cfgpkg "github.com/local/pageselector/internal/config"
    "github.com/local/pageselector/internal/dispatcher"
    "github.com/local/pageselector/internal/document"
    logpkg "github.com/local/pageselector/internal/logger"
    "github.com/local/pageselector/internal/metrics"
    "github.com/local/pageselector/internal/selector"
    "github.com/local/pageselector/internal/statuscheck"
    "github.com/local/pageselector/internal/store"
    web "github.com/local/pageselector/internal/web"
)

func main() {
    // .env is optional
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    // Init logging
    if err := logpkg.Init(logpkg.Options{
        Level: cfg.Logging.Level,
        Pretty: cfg.Logging.Pretty,
        File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB,
        MaxBackups: cfg.Logging.MaxBackups,
        MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress,
        Axiom: axiomOptions(cfg.Axiom),
    }); err != nil {
        fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
    }
    defer logpkg.Close()

    metrics.Init()

    // Output directory is created once at startup
    crops, err := store.NewCropStore(store.OutputDir, cfg.View.JPEGQuality)
    if err != nil {
        log.Fatal().Err(err).Msg("failed to prepare output directory")
    }

    inbox := selector.NewInbox(100)
    session := selector.New(selector.Options{
        Loader:   document.NewLoader(document.Options{}),
        Store:    crops,
        Notifier: inbox,
        Viewport: selector.Size{W: cfg.View.ScreenWidth, H: cfg.View.ScreenHeight},
    })

    loop := dispatcher.New(64)
    loop.Start()

    web.CleanupUploads(cfg.Server.UploadDir, cfg.Server.UploadMaxAge)

    mux := http.NewServeMux()
    ui := web.New(web.Options{
        Session:   session,
        Inbox:     inbox,
        Loop:      loop,
        Status:    statuscheck.New(statuscheck.Options{OutputDir: crops.Dir(), Rasterizer: document.RasterizerAvailable}),
        UploadDir: cfg.Server.UploadDir,
        Quality:   cfg.View.JPEGQuality,
        Username:  cfg.Server.WebUsername,
        Password:  cfg.Server.WebPassword,
    })
    ui.RegisterRoutes(mux)
    mux.Handle("/metrics", metrics.Handler())

    srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: mux}

    go func(){
        log.Info().
            Str("addr", cfg.Server.ListenAddr).
            Str("output_dir", crops.Dir()).
            Int("viewport_w", cfg.View.ScreenWidth).
            Int("viewport_h", cfg.View.ScreenHeight).
            Msgf("page selector listening on http://%s/web/", cfg.Server.ListenAddr)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
    defer cancel()
    _ = srv.Shutdown(ctx)
    next := 0
    _ = loop.Do(ctx, func() { next = session.Counter() })
    if err := loop.Stop(ctx); err != nil {
        log.Warn().Err(err).Msg("event loop did not stop in time")
    }
    log.Info().Int("next_image", next).Msg("shutdown complete")
}

// axiomOptions leaves the API key empty unless forwarding is switched on.
func axiomOptions(c cfgpkg.AxiomConfig) logpkg.AxiomOptions {
    if !c.Send {
        return logpkg.AxiomOptions{}
    }
    return logpkg.AxiomOptions{
        APIKey:  c.APIKey,
        OrgID:   c.OrgID,
        Dataset: c.Dataset,
        Flush:   c.FlushInterval,
    }
}
