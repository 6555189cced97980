package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guesswho-game/guesswho/internal/broadcast"
	"github.com/guesswho-game/guesswho/internal/common/clock"
	"github.com/guesswho-game/guesswho/internal/common/shuffle"
	"github.com/guesswho-game/guesswho/internal/common/token"
	"github.com/guesswho-game/guesswho/internal/common/uuid"
	"github.com/guesswho-game/guesswho/internal/config"
	"github.com/guesswho-game/guesswho/internal/handlers/web"
	"github.com/guesswho-game/guesswho/internal/handlers/ws"
	answerRepo "github.com/guesswho-game/guesswho/internal/repositories/answer"
	messageRepo "github.com/guesswho-game/guesswho/internal/repositories/message"
	questionRepo "github.com/guesswho-game/guesswho/internal/repositories/question"
	roomRepo "github.com/guesswho-game/guesswho/internal/repositories/room"
	userRepo "github.com/guesswho-game/guesswho/internal/repositories/user"
	chatService "github.com/guesswho-game/guesswho/internal/services/chat"
	gameService "github.com/guesswho-game/guesswho/internal/services/game"
	identityService "github.com/guesswho-game/guesswho/internal/services/identity"
	roomService "github.com/guesswho-game/guesswho/internal/services/room"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Initialize repositories
	users, err := userRepo.NewRedis(&userRepo.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatalf("Failed to create user repository: %v", err)
	}

	rooms, err := roomRepo.NewRedis(&roomRepo.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatalf("Failed to create room repository: %v", err)
	}

	questions, err := questionRepo.NewRedis(&questionRepo.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatalf("Failed to create question repository: %v", err)
	}

	answers, err := answerRepo.NewRedis(&answerRepo.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatalf("Failed to create answer repository: %v", err)
	}

	messages, err := messageRepo.NewRedis(&messageRepo.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatalf("Failed to create message repository: %v", err)
	}

	// Shared helpers
	systemClock := &clock.DefaultClock{}
	uuider := uuid.New()
	tokens := token.New()
	shuffler := shuffle.New()

	// Initialize services
	identitySvc, err := identityService.New(&identityService.Config{
		UserRepo:       users,
		UUIDGenerator:  uuider,
		TokenGenerator: tokens,
		Shuffler:       shuffler,
		TokenLength:    cfg.TokenLength,
	})
	if err != nil {
		log.Fatalf("Failed to create identity service: %v", err)
	}

	chatSvc, err := chatService.New(&chatService.Config{
		MessageRepo: messages,
		UserRepo:    users,
		Clock:       systemClock,
	})
	if err != nil {
		log.Fatalf("Failed to create chat service: %v", err)
	}

	roomSvc, err := roomService.New(&roomService.Config{
		RoomRepo:             rooms,
		UserRepo:             users,
		QuestionRepo:         questions,
		AnswerRepo:           answers,
		MessageRepo:          messages,
		Chat:                 chatSvc,
		Clock:                systemClock,
		UUIDGenerator:        uuider,
		TokenGenerator:       tokens,
		Shuffler:             shuffler,
		ListWindow:           cfg.RoomListWindow,
		ListLimit:            cfg.RoomListLimit,
		SelectionOptionCount: cfg.SelectionOptionCount,
		TokenLength:          cfg.TokenLength,
		MessageWindow:        cfg.MessageWindow,
	})
	if err != nil {
		log.Fatalf("Failed to create room service: %v", err)
	}

	gameSvc, err := gameService.New(&gameService.Config{
		RoomRepo:             rooms,
		UserRepo:             users,
		QuestionRepo:         questions,
		AnswerRepo:           answers,
		Clock:                systemClock,
		UUIDGenerator:        uuider,
		Shuffler:             shuffler,
		SelectionOptionCount: cfg.SelectionOptionCount,
	})
	if err != nil {
		log.Fatalf("Failed to create game service: %v", err)
	}

	// A fresh deployment has no questions; the first room cannot open
	// until the pool holds some
	if cfg.QuestionsFile != "" {
		seeded, err := seedQuestionPool(context.Background(), gameSvc, cfg.QuestionsFile)
		if err != nil {
			log.Fatalf("Failed to seed question pool: %v", err)
		}
		if seeded > 0 {
			logger.Info("seeded question pool", "questions", seeded)
		}
	}

	// Broadcast fan-out: local hub plus Redis pub/sub backplane
	hub := broadcast.NewHub(logger)
	bus, err := broadcast.NewBus(&broadcast.BusConfig{
		Hub:         hub,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to create broadcast bus: %v", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := bus.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("backplane subscription ended", "error", err)
		}
	}()

	// Handlers
	wsHandler, err := ws.NewHandler(&ws.Config{
		Identity:    identitySvc,
		Rooms:       roomSvc,
		Game:        gameSvc,
		Chat:        chatSvc,
		Hub:         hub,
		Broadcaster: bus,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to create websocket handler: %v", err)
	}

	webHandler, err := web.NewHandler(&web.Config{
		Identity:    identitySvc,
		Rooms:       roomSvc,
		Chat:        chatSvc,
		Broadcaster: bus,
		Logger:      logger,
		IconCount:   cfg.IconCount,
	})
	if err != nil {
		log.Fatalf("Failed to create web handler: %v", err)
	}

	mux := http.NewServeMux()
	webHandler.Register(mux)
	mux.Handle("/ws", wsHandler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-runCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// seedQuestionPool loads a starter catalog into an empty question pool.
// The file holds one question per line; blank lines and lines starting
// with # are skipped.
func seedQuestionPool(ctx context.Context, svc gameService.Service, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var texts []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, line)
	}

	out, err := svc.SeedQuestions(ctx, &gameService.SeedQuestionsInput{Texts: texts})
	if err != nil {
		return 0, err
	}
	return out.Added, nil
}
