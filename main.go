package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-brainstorm/backend/config"
	"go-brainstorm/backend/database"
	"go-brainstorm/backend/feed"
	"go-brainstorm/backend/handlers"
	"go-brainstorm/backend/limiter"
	"go-brainstorm/backend/middleware"
	"go-brainstorm/backend/services"
	"go-brainstorm/backend/websocket"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors" // 引入 CORS 庫
)

func main() {
	cfg := config.LoadConfig()

	database.ConnectMongoDB(cfg.MongoDBURI, cfg.DBName)
	defer database.DisconnectMongoDB()

	roomCollection := database.GetCollection(database.RoomCollectionName)

	// 核心物件都在這裡顯式建立並注入，關機時依序清理
	store := database.NewRoomStore(roomCollection)
	service := services.NewRoomService(store)
	publisher := feed.NewPublisher(roomCollection)
	hub := websocket.NewHub(publisher, service)
	go hub.Run()

	// Redis 僅用於建房限流，未配置時限流直接放行
	var rateLimiter *limiter.Limiter
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		rateLimiter = limiter.NewLimiter(redisClient)
		log.Printf("Rate limiter enabled via Redis at %s", cfg.RedisAddr)
	} else {
		log.Println("REDIS_ADDR not set, room creation rate limiting disabled.")
	}

	roomHandler := handlers.NewRoomHandler(service)

	router := mux.NewRouter()

	// 健康檢查路由
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Backend is running!")
	}).Methods("GET")

	// 房間 API 路由
	router.Handle("/rooms",
		middleware.RateLimitMiddleware(rateLimiter, http.HandlerFunc(roomHandler.CreateRoom))).Methods("POST")
	router.HandleFunc("/rooms/{code}", roomHandler.GetRoom).Methods("GET")
	router.HandleFunc("/rooms/{code}", roomHandler.EndRoom).Methods("DELETE")
	router.HandleFunc("/rooms/{code}/join", roomHandler.JoinRoom).Methods("POST")
	router.HandleFunc("/rooms/{code}/participants/{participantId}", roomHandler.RemoveParticipant).Methods("DELETE")
	router.HandleFunc("/rooms/{code}/phase", roomHandler.SetPhase).Methods("PUT")
	router.HandleFunc("/rooms/{code}/ideas", roomHandler.AddIdea).Methods("POST")
	router.HandleFunc("/rooms/{code}/ideas/{ideaId}/vote", roomHandler.ToggleVote).Methods("POST")
	router.HandleFunc("/rooms/{code}/ideas/{ideaId}/details", roomHandler.AddDetail).Methods("POST")
	router.HandleFunc("/rooms/{code}/ideas/{ideaId}/actions", roomHandler.AddAction).Methods("POST")
	router.HandleFunc("/rooms/{code}/ideas/{ideaId}/actions/{actionId}/toggle", roomHandler.ToggleAction).Methods("PUT")
	router.HandleFunc("/rooms/{code}/export", roomHandler.ExportRoom).Methods("GET")

	// 訂閱連線（WebSocket）
	router.HandleFunc("/ws", hub.ServeWS).Methods("GET")

	// 設置 CORS 中介軟體
	// 實際生產環境中，AllowedOrigins 應限制為前端網域
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// 如果錯誤不是因為主動關閉伺服器，就記錄錯誤並結束程式
			log.Fatalf("Could not listen on %s: %v", serverAddr, err)
		}
	}()

	//當按下 Ctrl+C，程式會收到 SIGINT
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal %s, shutting down server...", sig)

	//最多等30秒關閉，避免資料損壞，請求中斷
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// 確定性清理：先斷開所有訂閱連線，再釋放每個房間的觀察資源
	hub.Shutdown()
	publisher.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}

	log.Println("Server exited gracefully.")
}
