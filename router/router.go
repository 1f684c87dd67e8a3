package router

import (
	_ "go-shop-api/docs"
	"go-shop-api/handler"
	"net/http"
	"net/netip"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups the HTTP handlers the router dispatches to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Audit    *handler.AuditHandler
	Products *handler.ProductHandler
}

// Options configures the middleware wrapped around every route.
type Options struct {
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty means the peer
	// address is always the client address.
	TrustedProxies []netip.Prefix
}

func NewRouter(h Handlers, verifier handler.TokenVerifier, opts Options) http.Handler {
	mux := http.NewServeMux()

	// --- Public Routes ---
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /api/auth/signup", handler.ErrorHandlingMiddleware(h.Auth.Signup))
	mux.Handle("POST /api/auth/login", handler.ErrorHandlingMiddleware(h.Auth.Login))
	mux.Handle("GET /api/auth/refresh-token", handler.ErrorHandlingMiddleware(h.Auth.RefreshToken))
	mux.Handle("POST /api/auth/refresh-token", handler.ErrorHandlingMiddleware(h.Auth.RefreshToken))
	mux.Handle("POST /api/auth/logout", handler.ErrorHandlingMiddleware(h.Auth.Logout))

	mux.Handle("GET /api/products/allproducts", handler.ErrorHandlingMiddleware(h.Products.AllProducts))
	mux.Handle("GET /api/products/newcollections", handler.ErrorHandlingMiddleware(h.Products.NewCollections))
	mux.Handle("GET /api/products/popularinwomen", handler.ErrorHandlingMiddleware(h.Products.PopularInWomen))

	// --- Protected Routes ---
	authMiddleware := handler.AuthMiddleware(verifier)
	mux.Handle("GET /api/auth/me", authMiddleware(handler.ErrorHandlingMiddleware(h.Auth.Me)))

	// --- Admin Routes ---
	admin := func(next http.Handler) http.Handler {
		return authMiddleware(handler.AdminMiddleware(next))
	}
	mux.Handle("GET /api/audit-logs", admin(handler.ErrorHandlingMiddleware(h.Audit.ListAuditLogs)))
	mux.Handle("DELETE /api/audit-logs", admin(handler.ErrorHandlingMiddleware(h.Audit.ClearAuditLogs)))
	mux.Handle("PUT /api/admin/users/{id}/role", admin(handler.ErrorHandlingMiddleware(h.Users.UpdateUserRole)))
	mux.Handle("POST /api/products/addproduct", admin(handler.ErrorHandlingMiddleware(h.Products.AddProduct)))
	mux.Handle("POST /api/products/removeproduct", admin(handler.ErrorHandlingMiddleware(h.Products.RemoveProduct)))

	withCORS := handler.CORSMiddleware(opts.AllowedOrigins)(mux)
	return handler.RealIPMiddleware(opts.TrustedProxies)(handler.LoggingMiddleware(withCORS))
}
