package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"academic-records/auth"
	"academic-records/config"
	"academic-records/database"
	"academic-records/handlers"
	"academic-records/middleware"
	"academic-records/services"
	"academic-records/store"

	"github.com/gorilla/mux"
)

func main() {
	log.Println("🚀 Starting Academic Records Server...")

	// Загрузка конфигурации
	cfg := config.Load()
	log.Printf("📋 Configuration loaded: Server Port %s, store driver %s", cfg.ServerPort, cfg.StoreDriver)

	var st store.Store
	var db *database.Database
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Println("⚠️ Using in-memory store, data is lost on restart")
		st = store.NewMemory()
	default:
		var err error
		db, err = database.InitDB(cfg)
		if err != nil {
			log.Fatal("❌ Error initializing database:", err)
		}
		defer db.Close()

		if err := database.Migrate(db.ORM, cfg.DBReset); err != nil {
			log.Fatal("❌ Error migrating database:", err)
		}
		st = database.NewStore(db.ORM)
	}

	if cfg.SeedData {
		if err := database.Seed(context.Background(), st); err != nil {
			log.Fatal("❌ Error seeding data:", err)
		}
	}

	svc := services.New(st, time.Now)

	// Инициализация JWT сервиса
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)

	// Создание роутера
	r := mux.NewRouter()
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.Logging)

	// Маршруты
	handlers.RegisterRoutes(r, svc, jwtService)
	r.HandleFunc("/", rootHandler).Methods("GET")
	r.HandleFunc("/health", healthHandler(db, cfg.StoreDriver)).Methods("GET")

	serverAddr := ":" + cfg.ServerPort
	log.Printf("✅ Server successfully started on %s", serverAddr)
	log.Printf("🌐 Available at: http://localhost%s", serverAddr)
	log.Printf("🔐 JWT Expiry: %d hours", cfg.JWTExpiry)

	log.Fatal(http.ListenAndServe(serverAddr, r))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `
<!DOCTYPE html>
<html>
<head>
    <title>Academic Records API</title>
    <style>
        body { font-family: Arial, sans-serif; background: #f1f3f4; display: flex; justify-content: center; }
        .container { background: white; padding: 2rem 3rem; border-radius: 15px; margin-top: 3rem; max-width: 640px; }
        .status { background: #4CAF50; color: white; padding: 0.5rem 1rem; border-radius: 25px; display: inline-block; }
        code { background: #f8f9fa; padding: 0 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>🎓 Academic Records API</h1>
        <div class="status">✅ Сервер работает корректно</div>
        <p><strong>Public:</strong> <code>POST /api/auth/login</code>, <code>GET /health</code></p>
        <p><strong>Protected:</strong></p>
        <ul>
            <li><code>/api/groups</code>, <code>/api/students</code>, <code>/api/subjects</code></li>
            <li><code>/api/teachers</code>, <code>/api/admins</code></li>
            <li><code>/api/curriculum/{id}</code>, <code>/api/curriculum/{id}/marks</code></li>
            <li><code>/api/reports/groups/{id}</code>, <code>/api/reports/students/{id}</code></li>
        </ul>
        <p>Default admin: <code>admin</code> / <code>admin123</code></p>
    </div>
</body>
</html>`
	w.Write([]byte(html))
}

func healthHandler(db *database.Database, driver string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		response := map[string]interface{}{
			"status":    "ok",
			"service":   "academic-records",
			"store":     driver,
			"timestamp": time.Now().Format(time.RFC3339),
		}

		if db != nil {
			stats, err := db.Stats(r.Context())
			if err != nil {
				log.Printf("❌ Health check failed: %v", err)
				response["status"] = "degraded"
				w.WriteHeader(http.StatusServiceUnavailable)
			} else {
				response["stats"] = stats
			}
		}

		json.NewEncoder(w).Encode(response)
	}
}
