// One-shot cleanup of expired temp uploads, meant for crontab. Dry-run
// by default; pass -dry-run=false to actually delete.
package main

import (
	"flag"
	"os"

	"github.com/framelab/train_go_server/config"
	"github.com/framelab/train_go_server/internal/pkg/cron"
	"github.com/framelab/train_go_server/internal/pkg/logger"
)

var (
	dryRun      = flag.Bool("dry-run", true, "only report what would be deleted")
	expireHours = flag.Int("expire-hours", 0, "override the configured expiry window")
)

func main() {
	flag.Parse()

	logger.Init()
	log := logger.Get()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	hours := cfg.Upload.ExpireHours
	if *expireHours > 0 {
		hours = *expireHours
	}

	sweeper := cron.NewService(cfg.Upload.TempDir, hours)
	removed := sweeper.SweepExpired(*dryRun)

	if *dryRun {
		log.Info().Int("expired", removed).Msg("dry run complete, nothing deleted")
	} else {
		log.Info().Int("removed", removed).Msg("cleanup complete")
	}
}
