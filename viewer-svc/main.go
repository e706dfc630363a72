package main

import (
	"net/http"

	"cibo-compass/config"
	"cibo-compass/dishcore/aggregate"
	core "cibo-compass/dishcore/domain"
	"cibo-compass/dishcore/remote"
	httpapi "cibo-compass/viewer-svc/internal/api/http"
	"cibo-compass/viewer-svc/internal/service"
	"cibo-compass/viewer-svc/internal/storage"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	handler, cleanup := buildHandler(cfg, log)
	defer cleanup()

	httpapi.StartServer(cfg.ListenAddr, handler, log)
}

func buildHandler(cfg config.Config, log *logrus.Logger) (http.Handler, func()) {
	defaultNationality, err := core.ParseNationality(cfg.DefaultNationality)
	if err != nil {
		log.WithField("nationality", cfg.DefaultNationality).Warn("Unknown default nationality, using France")
		defaultNationality = core.France
	}

	client := remote.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, log)
	aggregator := aggregate.NewAggregator(client, nil, log)

	var closers []func()
	var store service.SessionStore = storage.NewMemoryStore()
	if cfg.RedisEnabled() {
		rdb := config.MustInitRedis(cfg, log)
		closers = append(closers, func() { rdb.Close() })
		store = storage.NewRedisSessionStore(rdb, cfg.SessionTTL)
	}

	var publisher service.FeedbackPublisher
	if cfg.KafkaEnabled() {
		writer := config.NewKafkaWriter(cfg)
		closers = append(closers, func() { writer.Close() })
		publisher = storage.NewKafkaFeedbackPublisher(writer)
	} else {
		log.Info("KAFKA_BROKER not set, feedback events are not published")
	}

	sessions := service.NewSessionService(client, aggregator, store, publisher,
		service.DefaultShareCodeGenerator{BaseURL: cfg.ShareBaseURL},
		service.Config{DefaultNationality: defaultNationality, ImagesBaseURL: cfg.ImagesBaseURL},
		log)

	cleanup := func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}
	return httpapi.NewRouter(httpapi.NewHandler(sessions)), cleanup
}
