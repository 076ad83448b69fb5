package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/quocanhngo/spark/internal/config"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/migrations"
)

const usage = `usage: migrate [-steps n] up|down|version

  up        apply every pending migration
  down      revert the last -steps migrations (default 1)
  version   print the applied schema version
`

func main() {
	steps := flag.Int("steps", 1, "number of migrations to revert with down")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cfg := config.Load()
	logger.InitFromConfig(cfg)

	if cfg.DB.Driver != "postgres" {
		logger.Error("sql migrations only run on postgres, other drivers use AutoMigrate", "driver", cfg.DB.Driver)
		os.Exit(2)
	}

	var err error
	switch flag.Arg(0) {
	case "up":
		err = migrations.Run(cfg.DB.URL())
	case "down":
		err = migrations.Rollback(cfg.DB.URL(), *steps)
	case "version":
		var st migrations.Status
		st, err = migrations.Current(cfg.DB.URL())
		if err == nil {
			if st.Empty {
				fmt.Println("no migration applied")
			} else {
				fmt.Printf("version %d (dirty=%t)\n", st.Version, st.Dirty)
			}
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("migration command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}
