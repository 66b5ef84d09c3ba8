package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/config"
	"github.com/Maheesh09/studio-full-stack/internal/content"
	"github.com/Maheesh09/studio-full-stack/internal/handlers"
	"github.com/Maheesh09/studio-full-stack/internal/media"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/Maheesh09/studio-full-stack/internal/realtime"
	"github.com/Maheesh09/studio-full-stack/internal/session"
	"github.com/Maheesh09/studio-full-stack/internal/store"
	"github.com/Maheesh09/studio-full-stack/internal/telemetry"
	"github.com/Maheesh09/studio-full-stack/web"
	"github.com/gorilla/csrf"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const chatHost = "https://www.chatbase.co"

func main() {
	// Log at debug until the configured level is known.
	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	shutdownTracing := telemetry.Setup(cfg.ServiceName)

	// 2. Contact store and realtime hub
	db, err := store.NewStore(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)
	db.OnChange = func(action string, c models.ContactSubmission) {
		hub.Publish(realtime.Event{
			Type:      action,
			Table:     "contact_submissions",
			Data:      c,
			Timestamp: time.Now(),
		})
	}

	// 3. Backend client and session scopes
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	customers := session.NewCustomerScope(
		session.NewCookieStore(cfg.SessionKey, cfg.CookieSecure, cfg.CookieDomain), client)
	admins := session.NewAdminScope(
		session.NewCookieStore(cfg.AdminKey, cfg.CookieSecure, cfg.CookieDomain), client, cfg.AdminIdleTimeout)

	images, err := media.NewStorage(cfg.CloudinaryURL, cfg.UploadDir)
	if err != nil {
		slog.Error("Failed to initialize image storage", "error", err)
		os.Exit(1)
	}

	// 4. Content and templates
	catalog, err := content.LoadCatalog()
	if err != nil {
		slog.Error("Failed to load service pages", "error", err)
		os.Exit(1)
	}

	templates := handlers.NewTemplateCache()
	if err := templates.Load(web.Templates()); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Setup Handlers
	publicHandler := &handlers.PublicHandler{
		API:          client,
		Customers:    customers,
		Contacts:     db,
		Catalog:      catalog,
		Templates:    templates,
		ChatWidgetID: cfg.ChatWidgetID,
	}
	bookingHandler := &handlers.BookingHandler{PublicHandler: publicHandler}
	adminHandler := &handlers.AdminHandler{
		Admins:    admins,
		Contacts:  db,
		Hub:       hub,
		Media:     images,
		Templates: templates,
	}

	rateLimiter := handlers.NewRateLimiter(cfg.RateLimitPerMin)
	go rateLimiter.Run(ctx, time.Minute)

	mux := http.NewServeMux()

	// Static Files
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(web.Static())))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads", http.FileServer(http.Dir(cfg.UploadDir))))

	// Public Routes
	mux.HandleFunc("GET /", publicHandler.Home)
	mux.HandleFunc("GET /services", publicHandler.Services)
	mux.HandleFunc("GET /services/{slug}", publicHandler.ServiceDetail)
	mux.HandleFunc("GET /contact", publicHandler.ContactForm)
	mux.HandleFunc("POST /contact", rateLimiter.Middleware(publicHandler.SubmitContact))
	mux.HandleFunc("GET /register", publicHandler.RegisterForm)
	mux.HandleFunc("POST /register", rateLimiter.Middleware(publicHandler.Register))
	mux.HandleFunc("GET /login", publicHandler.LoginForm)
	mux.HandleFunc("POST /login", rateLimiter.Middleware(publicHandler.Login))
	mux.HandleFunc("POST /logout", publicHandler.Logout)
	mux.HandleFunc("GET /profile", publicHandler.Profile)
	mux.HandleFunc("GET /my-orders", publicHandler.MyOrders)
	mux.HandleFunc("GET /book", bookingHandler.Form)
	mux.HandleFunc("POST /book", rateLimiter.Middleware(bookingHandler.Submit))

	// Admin login
	mux.HandleFunc("GET /admin/login", adminHandler.LoginForm)
	mux.HandleFunc("POST /admin/login", rateLimiter.Middleware(adminHandler.Login))
	mux.HandleFunc("POST /admin/logout", adminHandler.Logout)

	// Protected Routes
	guard := adminHandler.RequireAdmin
	mux.HandleFunc("GET /admin", guard(adminHandler.Dashboard))
	for _, page := range adminHandler.Resources() {
		base := "/admin/" + page.Name()
		mux.HandleFunc("GET "+base, guard(page.List))
		mux.HandleFunc("POST "+base, guard(page.Create))
		mux.HandleFunc("POST "+base+"/{id}", guard(page.Update))
		mux.HandleFunc("POST "+base+"/{id}/delete", guard(page.Delete))
	}
	mux.HandleFunc("POST /admin/orders/{id}/status", guard(adminHandler.UpdateOrderStatus))
	mux.HandleFunc("POST /admin/orders/{id}/payment", guard(adminHandler.UpdateOrderPayment))

	mux.HandleFunc("GET /admin/contacts", guard(adminHandler.ListContacts))
	mux.HandleFunc("GET /admin/contacts/export.csv", guard(adminHandler.ExportContactsCSV))
	mux.HandleFunc("GET /admin/contacts/export.xlsx", guard(adminHandler.ExportContactsXLSX))
	mux.HandleFunc("POST /admin/contacts/{id}/delete", guard(adminHandler.DeleteContact))
	mux.HandleFunc("GET /admin/contacts/ws", guard(adminHandler.ContactsWS))

	// 6. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// The chat widget's host is only allowed when the widget is enabled.
	allowedChat := ""
	if cfg.ChatWidgetID != "" {
		allowedChat = chatHost
	}
	securityHeaders := handlers.SecurityHeadersMiddleware(allowedChat)

	// Chain: Logger -> Security Headers -> CSRF -> Tracing -> Mux
	handler := handlers.LoggingMiddleware(
		securityHeaders(
			CSRF(otelhttp.NewHandler(mux, cfg.ServiceName)),
		),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "api", cfg.APIBaseURL, "db", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	stopBackground()
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Warn("Tracer shutdown failed", "error", err)
	}

	slog.Info("Server exited gracefully.")
}
