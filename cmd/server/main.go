package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codejudge/internal/api"
	"codejudge/internal/app/service"
	"codejudge/internal/app/worker"
	"codejudge/internal/common/logging"
	"codejudge/internal/common/security"
	"codejudge/internal/domain/repository"
	"codejudge/internal/platform/cache"
	"codejudge/internal/platform/config"
	"codejudge/internal/platform/database"
	"codejudge/internal/platform/judge"
	"codejudge/internal/platform/mail"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	rootCtx := context.Background()
	rdb, err := cache.Connect(rootCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	userRepo := repository.NewPgUserRepository(db)
	problemRepo := repository.NewPgProblemRepository(db)

	tokens := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)

	judgeClient := judge.NewClient(judge.Config{
		BaseURL:       cfg.JudgeBaseURL,
		AccessToken:   cfg.JudgeAccessToken,
		MasterJudgeID: cfg.JudgeMasterID,
		TypeID:        cfg.JudgeTypeID,
		TestJudgeID:   cfg.JudgeTestID,
	})

	compilerCatalog := cache.NewCompilerCatalog(rdb, cfg.CompilerCacheTTL, logger)

	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo)
	problemService := service.NewProblemService(problemRepo, judgeClient, logger)
	notificationService := service.NewNotificationService(rdb, cfg.NotificationQueueName, logger)
	submissionService := service.NewSubmissionService(
		problemRepo, userRepo, judgeClient, compilerCatalog,
		notificationService, cfg.PollCeiling, logger,
	)

	mailSender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	notificationWorker := worker.NewNotificationWorker(rdb, cfg.NotificationQueueName, mailSender, logger)
	workerCtx, workerCancel := context.WithCancel(rootCtx)
	defer workerCancel()
	go notificationWorker.Start(workerCtx)

	// The submit endpoint holds the connection open for the whole polling
	// window, so router and server timeouts must exceed the poll ceiling.
	requestTimeout := cfg.PollCeiling + 30*time.Second
	router := api.NewRouter(tokens, authService, userService, problemService, submissionService, requestTimeout)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.String("port", cfg.APIPort), zap.Error(err))
		}
	}()

	<-stop

	logger.Info("shutting down")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(rootCtx, 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server and worker stopped")
}
