package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/arsenal/internal/idempotency"
	"github.com/erazemk/arsenal/internal/inventory"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/telemetry"
)

// Deps holds everything the router needs.
type Deps struct {
	DB          *sql.DB
	JWTSecret   string
	TokenTTL    time.Duration
	Inventory   *inventory.Service
	Idempotency idempotency.Store
	Telemetry   *telemetry.Recorder
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: deps.DB, JWTSecret: deps.JWTSecret, TokenTTL: deps.TokenTTL}
	usersHandler := &UsersHandler{DB: deps.DB}
	catalogHandler := &CatalogHandler{Inventory: deps.Inventory}
	recordsHandler := &RecordsHandler{Inventory: deps.Inventory}

	authMW := AuthMiddleware(deps.JWTSecret, deps.DB)
	once := IdempotencyMiddleware(deps.Idempotency, idempotency.DefaultTTL)
	mutate := func(h http.HandlerFunc) http.Handler { return authMW(once(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(RequireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(RequireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Catalog: read (all roles), write (admin, enforced by the core).
	mux.Handle("GET /api/bases", authMW(http.HandlerFunc(catalogHandler.ListBases)))
	mux.Handle("POST /api/bases", mutate(catalogHandler.CreateBase))
	mux.Handle("GET /api/equipment-types", authMW(http.HandlerFunc(catalogHandler.ListEquipmentTypes)))
	mux.Handle("POST /api/equipment-types", mutate(catalogHandler.CreateEquipmentType))
	mux.Handle("PUT /api/equipment-types/{id}/image", authMW(http.HandlerFunc(catalogHandler.UploadImage)))
	mux.Handle("GET /api/equipment-types/{id}/image", authMW(http.HandlerFunc(catalogHandler.GetImage)))

	// Movement records.
	mux.Handle("GET /api/purchases", authMW(recordsHandler.List(model.KindPurchase)))
	mux.Handle("POST /api/purchases", mutate(recordsHandler.CreatePurchase))
	mux.Handle("GET /api/transfers", authMW(recordsHandler.List(model.KindTransfer)))
	mux.Handle("POST /api/transfers", mutate(recordsHandler.CreateTransfer))
	mux.Handle("PATCH /api/transfers/{id}/status", mutate(recordsHandler.UpdateTransferStatus))
	mux.Handle("GET /api/assignments", authMW(recordsHandler.List(model.KindAssignment)))
	mux.Handle("POST /api/assignments", mutate(recordsHandler.CreateAssignment))
	mux.Handle("GET /api/expenditures", authMW(recordsHandler.List(model.KindExpenditure)))
	mux.Handle("POST /api/expenditures", mutate(recordsHandler.CreateExpenditure))

	// Balances.
	mux.Handle("GET /api/metrics", authMW(http.HandlerFunc(recordsHandler.Metrics)))

	if deps.Telemetry != nil {
		mux.Handle("GET /metrics", deps.Telemetry.Handler())
	}

	return mux
}
