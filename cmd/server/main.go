package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "pollboard/docs"
	"pollboard/internal/config"
	"pollboard/internal/domain/question"
	"pollboard/internal/domain/user"
	"pollboard/internal/domain/vote"
	api "pollboard/internal/http"
	"pollboard/internal/metrics"
	"pollboard/internal/platform/database"
	jwtpkg "pollboard/internal/platform/jwt"
	"pollboard/internal/repository/postgres"
	"pollboard/internal/worker"
)

// @title           Poll Board API
// @version         1.0
// @description     Poll questions with time-windowed voting and JWT auth
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()

	metrics.Register()

	db, err := database.NewPostgres(cfg.DB_DSN)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	questionRepo := postgres.NewQuestionRepo(db)
	voteRepo := postgres.NewVoteRepo(db)

	userSvc := user.NewService(userRepo)
	questionSvc := question.NewService(questionRepo)
	voteSvc := vote.NewService(voteRepo, questionRepo)

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer)

	voteCh := make(chan worker.VoteEvent, 100)
	auditWorker := worker.NewAuditWorker(voteCh, slog.Default())

	router := api.NewRouter(userSvc, questionSvc, voteSvc, jwtMgr, voteCh, db)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go auditWorker.Run(ctx)

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	<-stop
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}

	log.Println("server stopped")
}
