package app

import (
	"crypto/rand"

	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/taskflow/internal/config"
)

func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}

	if cfg.Session.SigningKey == "" {
		key := make([]byte, 32)
		_, err = rand.Read(key)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("failed to generate session signing key")
			panic(err)
		}
		cfg.Session.SigningKey = string(key)
		globalLogger.Warn().Msg("SESSION_SIGNING_KEY is empty, sessions will not survive a restart")
	}

	globalLogger.Info().
		Str("env", cfg.Env).
		Msg("read env")

	config.SetGlobal(cfg)
}
