// Command news-mailer fetches the day's news, summarizes every article and
// mails the digest once.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/Adda-Baaj/khobor-mailer/internal/app"
	"github.com/Adda-Baaj/khobor-mailer/internal/config"
	"github.com/Adda-Baaj/khobor-mailer/internal/logger"
)

const confirmation = "✔ 已寄出每日新聞摘要！"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "news-mailer:", err)
		os.Exit(1)
	}
	fmt.Println(confirmation)
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if _, err := app.RunOnce(ctx, cfg, log); err != nil {
		log.ErrorObj("digest run failed", "run_failed", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}
