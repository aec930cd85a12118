package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/minsuRob/sportcomm-sub006/internal/config"
	"github.com/minsuRob/sportcomm-sub006/internal/database"
	"github.com/minsuRob/sportcomm-sub006/internal/progress"
	postgresrepo "github.com/minsuRob/sportcomm-sub006/internal/repository/postgres"
	"github.com/minsuRob/sportcomm-sub006/internal/service"
	"github.com/minsuRob/sportcomm-sub006/internal/transport/http/handlers"
	"github.com/minsuRob/sportcomm-sub006/internal/transport/http/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()

	// Database
	if err := database.Migrate(cfg); err != nil {
		log.Fatal(err)
	}
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Redis (token blacklist)
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal(err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	teamRepo := postgresrepo.NewTeamRepo(pool)
	roomRepo := postgresrepo.NewRoomRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Services
	roomService := service.NewRoomService(roomRepo, teamRepo)
	messageService := service.NewMessageService(messageRepo, roomRepo, userRepo, roomService)
	privateChatService := service.NewPrivateChatService(roomRepo, messageRepo, userRepo)
	chatService := service.NewChatService(roomService, messageService, privateChatService, userRepo)

	// Progress events (optional: skipped when no brokers are configured)
	if cfg.KafkaBrokers != "" {
		producer, err := progress.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.ProgressTopic)
		if err != nil {
			log.Fatal(err)
		}
		defer producer.Close()
		messageService.SetNotifier(producer)
	} else {
		log.Println("KAFKA_BROKERS not set, progress events disabled")
	}

	// Handlers
	roomHandler := handlers.NewRoomHandler(chatService)
	messageHandler := handlers.NewMessageHandler(chatService)
	privateChatHandler := handlers.NewPrivateChatHandler(chatService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret, rdb)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Protected - Rooms
	mux.Handle("GET /api/v1/chat/rooms", auth(http.HandlerFunc(roomHandler.List)))
	mux.Handle("POST /api/v1/chat/rooms", auth(http.HandlerFunc(roomHandler.Create)))
	mux.Handle("GET /api/v1/chat/rooms/public", auth(http.HandlerFunc(roomHandler.ListPublic)))
	mux.Handle("GET /api/v1/chat/teams/{id}/rooms", auth(http.HandlerFunc(roomHandler.ListByTeam)))
	mux.Handle("GET /api/v1/chat/rooms/{id}", auth(http.HandlerFunc(roomHandler.Get)))
	mux.Handle("POST /api/v1/chat/rooms/{id}/join", auth(http.HandlerFunc(roomHandler.Join)))
	mux.Handle("POST /api/v1/chat/rooms/{id}/leave", auth(http.HandlerFunc(roomHandler.Leave)))

	// Protected - Messages
	mux.Handle("GET /api/v1/chat/rooms/{id}/messages", auth(http.HandlerFunc(messageHandler.List)))
	mux.Handle("POST /api/v1/chat/rooms/{id}/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("POST /api/v1/chat/messages/{id}/read", auth(http.HandlerFunc(messageHandler.MarkRead)))
	mux.Handle("PATCH /api/v1/chat/messages/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("POST /api/v1/chat/messages/{id}/pin", auth(http.HandlerFunc(messageHandler.TogglePin)))

	// Protected - Private chats
	mux.Handle("POST /api/v1/chat/private", auth(http.HandlerFunc(privateChatHandler.FindOrCreate)))
	mux.Handle("GET /api/v1/chat/private", auth(http.HandlerFunc(privateChatHandler.List)))
	mux.Handle("GET /api/v1/chat/private/{id}/partner", auth(http.HandlerFunc(privateChatHandler.GetPartner)))
	mux.Handle("GET /api/v1/chat/partners/search", auth(http.HandlerFunc(privateChatHandler.SearchPartners)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: middleware.CORS(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
