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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	openaiclient "counseling-ai-backend/internal/clients/openai"
	"counseling-ai-backend/internal/config"
	"counseling-ai-backend/internal/prompts"
	"counseling-ai-backend/internal/scheduler"
	"counseling-ai-backend/internal/services"
	"counseling-ai-backend/internal/storage/postgres"
	"counseling-ai-backend/internal/storage/supabase"
	"counseling-ai-backend/internal/web"
	"counseling-ai-backend/internal/web/handlers"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load("./configs", "config")
	if err != nil {
		log.Fatalf("錯誤：無法載入設定: %v", err)
	}
	log.Println("資訊：應用程式設定載入成功。")

	// 資料庫遷移
	migrationPath := "file://scripts/migrate/postgres"
	log.Printf("資訊：準備執行資料庫遷移，來源: %s, 目標資料庫: %s", migrationPath, cfg.Database.DBName)
	m, err := migrate.New(migrationPath, cfg.Database.MigrateURL())
	if err != nil {
		log.Fatalf("錯誤：建立遷移實例失敗: %v", err)
	}
	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Fatalf("錯誤：獲取資料庫遷移版本失敗: %v", err)
	}
	if dirty {
		log.Fatalf("錯誤：資料庫處於 dirty 狀態 (版本 %d)，遷移失敗。", currentVersion)
	}
	log.Printf("資訊：目前資料庫版本: %d。開始應用遷移...", currentVersion)
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("錯誤：執行資料庫遷移 (m.Up) 失敗: %v", err)
	} else if err == migrate.ErrNoChange {
		log.Println("資訊：資料庫結構已是最新，無需遷移。")
	} else {
		newVersion, _, _ := m.Version()
		log.Printf("資訊：資料庫遷移成功完成，版本更新至: %d。", newVersion)
	}

	videoStorage, err := supabase.NewStorage(cfg.Supabase)
	if err != nil {
		log.Fatalf("錯誤：初始化 Supabase Storage 失敗: %v", err)
	}

	var dbStore handlers.DBStore
	realDBStore, err := postgres.NewPostgresStore(cfg.Database)
	if err != nil {
		log.Fatalf("錯誤：初始化 PostgreSQL 資料庫連線失敗: %v", err)
	}
	dbStore = realDBStore
	defer realDBStore.Close()

	aiClient, err := openaiclient.NewClient(cfg.OpenAI)
	if err != nil {
		log.Fatalf("錯誤：初始化 OpenAI 客戶端失敗: %v", err)
	}

	promptManager := prompts.NewManager(cfg.Prompts)
	taskRegistry := services.NewTaskRegistry(time.Duration(cfg.Tasks.RetentionMinutes) * time.Minute)

	analyzeSvc, err := services.NewAnalyzeService(cfg, dbStore, videoStorage, aiClient, promptManager, taskRegistry)
	if err != nil {
		log.Fatalf("錯誤：初始化影片分析服務失敗: %v", err)
	}

	if cfg.Scheduler.Enabled {
		log.Println("資訊：排程器已在設定檔中啟用，正在初始化...")
		appScheduler := scheduler.NewScheduler(
			analyzeSvc,
			cfg.Scheduler.AnalyzeCronSpec,
			cfg.Scheduler.CleanupCronSpec,
		)
		appScheduler.Start()
		log.Println("資訊：排程器已啟動。")
		defer appScheduler.Stop()
	} else {
		log.Println("資訊：排程器已在設定檔中禁用。")
	}

	router := web.SetupRouter(cfg, dbStore, videoStorage, analyzeSvc)
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		log.Printf("資訊：HTTP 伺服器正在監聽 %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("錯誤：HTTP 伺服器監聽失敗: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("資訊：收到關閉訊號，正在關閉應用程式...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("錯誤：HTTP 伺服器優雅關閉失敗: %v", err)
	}
	log.Println("資訊：HTTP 伺服器已關閉。")
	log.Println("資訊：應用程式已成功關閉。")
}
