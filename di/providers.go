package di

import (
	"hotel/config"
	"hotel/infras/kafka"

	"github.com/rs/zerolog/log"
)

// provideKafka returns nil when Kafka is off or unreachable; booking events
// are then dropped instead of failing startup.
func provideKafka(cfg *config.Config) kafka.Client {
	if !cfg.Kafka.Enable {
		return nil
	}

	client, err := kafka.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to create kafka client, booking events disabled")

		return nil
	}

	return client
}
