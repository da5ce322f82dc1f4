package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/kpredict/predict-backend/internal/config"
	"github.com/kpredict/predict-backend/internal/logger"
	"github.com/rs/zerolog"
)

// migrate applies the schema migration pairs under -path against the
// configured database.
func main() {
	var dir string
	flag.StringVar(&dir, "path", "migrations", "Directory holding the migration pairs")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	m, err := migrate.New("file://"+dir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", dir).Msg("open migrator")
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return
	}

	switch args[0] {
	case "up":
		report(log, "up", m.Up())
	case "down":
		report(log, "down", m.Down())
	case "steps":
		if len(args) < 2 {
			log.Fatal().Msg("steps requires a count, e.g. steps -1")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("invalid step count")
		}
		report(log, "steps", m.Steps(n))
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatal().Err(err).Msg("read schema version")
		}
		log.Info().Uint("version", uint(v)).Bool("dirty", dirty).Msg("schema version")
	case "force":
		if len(args) < 2 {
			log.Fatal().Msg("force requires a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("invalid version")
		}
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Msg("force failed")
		}
		log.Info().Int("version", v).Msg("schema version forced")
	default:
		usage()
	}
}

func report(log zerolog.Logger, command string, err error) {
	switch {
	case err == migrate.ErrNoChange:
		log.Info().Str("command", command).Msg("schema already current")
	case err != nil:
		log.Fatal().Err(err).Str("command", command).Msg("migration failed")
	default:
		log.Info().Str("command", command).Msg("migration applied")
	}
}

func usage() {
	fmt.Println("Usage: migrate [-path dir] <up|down|steps <n>|version|force <version>>")
	flag.PrintDefaults()
}
