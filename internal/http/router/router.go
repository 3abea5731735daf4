package router

import (
	"net/http"

	"github.com/gorilla/mux"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/http/handlers"
	"imagemarket/internal/http/middleware"
	"imagemarket/internal/http/respond"
	"imagemarket/internal/media"
	"imagemarket/internal/security"
	"imagemarket/internal/store"
)

type Deps struct {
	Store       store.Store
	Provider    handlers.ImageProvider
	Media       *media.Store
	Auth        *security.Authenticator
	Tokens      *security.TokenIssuer
	Sessions    *security.SessionStore
	CORSOrigins []string
	StaticDir   string
}

func Setup(d Deps) http.Handler {
	r := mux.NewRouter()

	authHandler := handlers.NewAuthHandler(d.Store, d.Tokens, d.Sessions)
	uploadHandler := handlers.NewUploadHandler(d.Store, d.Media)
	imageHandler := handlers.NewImageHandler(d.Provider)
	marketHandler := handlers.NewMarketplaceHandler(d.Store, d.Provider)
	entitlementHandler := handlers.NewEntitlementHandler(d.Store)
	adminHandler := handlers.NewAdminHandler(d.Store)

	bearer := middleware.RequireBearer(d.Auth, d.Sessions)
	protected := func(h http.HandlerFunc) http.Handler { return bearer(h) }

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, apperrors.NotFound("Not found"), "Not found")
	})

	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	api.Handle("/auth/profile", protected(authHandler.Profile)).Methods("GET")
	api.Handle("/auth/profile", protected(authHandler.UpdateProfile)).Methods("PUT")

	api.HandleFunc("/uploads", uploadHandler.List).Methods("GET")
	api.Handle("/uploads", protected(uploadHandler.Create)).Methods("POST")
	api.Handle("/uploads/user", protected(uploadHandler.Mine)).Methods("GET")
	api.HandleFunc("/uploads/{id}", uploadHandler.Get).Methods("GET")
	api.Handle("/uploads/{id}", protected(uploadHandler.Update)).Methods("PUT")
	api.Handle("/uploads/{id}", protected(uploadHandler.Delete)).Methods("DELETE")
	api.HandleFunc("/uploads/{id}/metadata", uploadHandler.Get).Methods("GET")
	api.HandleFunc("/uploads/{id}/file", uploadHandler.File).Methods("GET")
	api.HandleFunc("/uploads/{id}/thumbnail", uploadHandler.Thumbnail).Methods("GET")

	api.HandleFunc("/images/search", imageHandler.Search).Methods("GET")
	api.HandleFunc("/images/random", imageHandler.Random).Methods("GET")
	api.HandleFunc("/marketplace", marketHandler.Browse).Methods("GET")

	api.Handle("/purchases", protected(entitlementHandler.ListPurchases)).Methods("GET")
	api.Handle("/purchases", protected(entitlementHandler.Purchase)).Methods("POST")
	api.Handle("/downloads", protected(entitlementHandler.ListDownloads)).Methods("GET")
	api.Handle("/downloads", protected(entitlementHandler.Download)).Methods("POST")

	api.HandleFunc("/health", adminHandler.Health).Methods("GET")
	api.Handle("/admin/stats", protected(adminHandler.Stats)).Methods("GET")

	prefix := d.Media.Prefix() + "/"
	r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(d.Media.Dir()))))
	if d.StaticDir != "" {
		r.PathPrefix("/images/").Handler(http.FileServer(http.Dir(d.StaticDir)))
	}

	// CORS sits outside the router so preflight requests never hit 405.
	return middleware.Recover(middleware.Logging(middleware.CORS(d.CORSOrigins)(r)))
}
