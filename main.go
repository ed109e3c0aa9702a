package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/example/drillbot/internal/ai"
	"github.com/example/drillbot/internal/auth"
	"github.com/example/drillbot/internal/config"
	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/internal/importer"
	"github.com/example/drillbot/internal/notify"
	"github.com/example/drillbot/internal/ratelimit"
	"github.com/example/drillbot/internal/scheduler"
	"github.com/example/drillbot/internal/server"
	"github.com/example/drillbot/internal/session"
)

func main() {
	importPath := flag.String("import", "", "import a question bank from a csv or xlsx file, then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	dsn := cfg.DBPath
	if cfg.DBType == "postgres" {
		dsn = cfg.DatabaseURL
	}
	if err := database.Connect(cfg.DBType, dsn); err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	if *importPath != "" {
		runImport(*importPath)
		return
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logrus.Fatalf("failed to set up token manager: %v", err)
	}

	var hints server.HintProvider
	if cfg.OpenAIKey != "" {
		client, err := ai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			logrus.Fatalf("failed to set up hint client: %v", err)
		}
		hints = client
	}

	store := attemptStore(cfg)
	srv := server.New(cfg, server.Deps{
		Tokens: tokens,
		Users:  database.NewUserRepository(),
		Sessions: session.NewService(
			database.NewTopicRepository(),
			database.NewQuestionRepository(),
			database.NewProgressRepository(),
			database.NewResultRepository(),
			session.NewComposer(nil),
		),
		Stats:     database.NewStatisticsRepository(),
		Questions: database.NewQuestionRepository(),
		Hints:     hints,
		SignIn:    ratelimit.New(store, ratelimit.SignInMaxAttempts, ratelimit.Window),
		Register:  ratelimit.New(store, ratelimit.RegisterMaxAttempts, ratelimit.Window),
	})

	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken)
		if err != nil {
			logrus.Errorf("telegram digests disabled: %v", err)
		} else {
			sched := scheduler.New(notifier)
			sched.Start()
			defer sched.Stop()
		}
	}

	go func() {
		logrus.Infof("listening on :%s", cfg.Port)
		if err := srv.Listen(); err != nil {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logrus.Infof("received signal %v, shutting down", sig)

	if err := srv.Shutdown(); err != nil {
		logrus.Errorf("error during shutdown: %v", err)
	}
}

func runImport(path string) {
	result, err := importer.ImportQuestions(context.Background(), importer.DefaultConfig(path))
	if err != nil {
		logrus.Fatalf("import failed: %v", err)
	}
	logrus.Infof("import finished: %d rows processed, %d imported, %d topics created",
		result.TotalProcessed, result.Imported, result.TopicsCreated)
	for _, rowErr := range result.Errors {
		logrus.Warn(rowErr)
	}
}

// attemptStore picks the backend for sign-in and registration attempt
// counting. Redis keeps the limits shared across replicas; without it each
// process counts on its own.
func attemptStore(cfg *config.Config) ratelimit.Store {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemoryStore()
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.Warnf("redis unreachable, falling back to in-memory attempt limits: %v", err)
		return ratelimit.NewMemoryStore()
	}
	logrus.Info("attempt limits backed by redis")
	return ratelimit.NewRedisStore(client, "drillbot")
}
