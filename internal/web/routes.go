package web

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"counseling-ai-backend/internal/config"
	"counseling-ai-backend/internal/services"
	"counseling-ai-backend/internal/web/handlers"
)

// SetupRouter 組裝全部 REST 路由。
// CORS 全開放，供前端 SPA 直接呼叫。
func SetupRouter(
	appConfig *config.Config,
	db handlers.DBStore,
	storage handlers.VideoStorage,
	analyzeService *services.AnalyzeService,
) http.Handler {
	if analyzeService == nil {
		log.Panicln("SetupRouter：AnalyzeService 不得為空")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Method(http.MethodPost, "/upload/{staff}", handlers.NewUploadHandler(storage, appConfig.Upload))
	r.Method(http.MethodGet, "/list/{staff}", handlers.NewListHandler(storage, db))
	r.Method(http.MethodGet, "/signed-url/{staff}/{filename}", handlers.NewSignedURLHandler(storage, appConfig.Supabase.SignedURLExpirySecs))
	r.Method(http.MethodDelete, "/delete/{staff}/{filename}", handlers.NewDeleteHandler(storage, db))
	r.Method(http.MethodPost, "/analyze/{staff}/{filename}", handlers.NewAnalyzeHandler(analyzeService, db))
	r.Method(http.MethodGet, "/analysis/{staff}/{filename}", handlers.NewAnalysisHandler(db))
	r.Method(http.MethodGet, "/task-status/{staff}/{filename}", handlers.NewTaskStatusHandler(analyzeService))
	r.Method(http.MethodGet, "/results/{staff}", handlers.NewResultsHandler(db))
	r.Method(http.MethodGet, "/healthz", handlers.NewHealthHandler(db))

	log.Println("資訊：HTTP 路由設定完成。")
	return r
}
