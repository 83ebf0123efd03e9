package setup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"portfolio-server/config"
	"portfolio-server/content"
	"portfolio-server/db"
	"portfolio-server/email"
	"portfolio-server/handlers"
	"portfolio-server/hooks"
	"portfolio-server/host"
	"portfolio-server/logging"
	"portfolio-server/model"
	"portfolio-server/notify"
	"portfolio-server/routes"
	"portfolio-server/security"
	"portfolio-server/telemetry"
	"portfolio-server/types"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
)

const (
	shutdownTimeout      = 15 * time.Second
	tokenCleanupInterval = time.Hour
	readHeaderTimeout    = 10 * time.Second
	writeTimeout         = 60 * time.Second
)

// Services is everything the http layer depends on, built once per process.
type Services struct {
	Config  *config.Config
	Content *content.Store
	Guard   *security.Guard
	CSP     *telemetry.CSPLog
	Vitals  *telemetry.Vitals
	Uptime  *telemetry.Uptime
	Chatbot *model.Chatbot
	Mailer  *email.Mailer

	draining atomic.Bool
}

func MustLoadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func MustInitLogging(cfg *config.Config) *zap.Logger {
	logger, err := logging.Init(cfg.Env, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func MustLoadIp(cfg *config.Config) {
	err := host.LoadIp(cfg.Env)
	if err != nil {
		zap.L().Fatal("Error loading IP", zap.Error(err))
	}
}

func MustInitDb(cfg *config.Config) {
	if err := InitDb(cfg); err != nil {
		zap.L().Fatal("Error initializing database", zap.Error(err))
	}
}

func InitDb(cfg *config.Config) error {
	err := db.Connect(db.Options{Driver: cfg.Database.Driver, Url: cfg.Database.Url, Production: cfg.IsProduction()})
	if err != nil {
		return err
	}

	err = db.MigrationsUp()
	if err != nil {
		db.Close()
		return err
	}

	return nil
}

func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	store := content.NewStore(cfg.Content.ProfilePath)
	if err := store.Reload(); err != nil {
		zap.L().Warn("Error loading profile, serving defaults", zap.String("path", cfg.Content.ProfilePath), zap.Error(err))
	}

	guard, err := security.NewGuard(security.OptionsFromConfig(cfg.Security))
	if err != nil {
		return nil, fmt.Errorf("error creating security guard: %v", err)
	}

	provider, err := model.NewProvider(ctx, cfg.Chat)
	if err != nil {
		zap.L().Warn("Error creating chat provider, chat will answer from site content only", zap.Error(err))
		provider = nil
	}

	retriever := model.NewRetriever(model.PortfolioCorpus(store), 0)
	store.OnChange(func(*content.Profile) {
		retriever.Invalidate()
	})

	chatbot := model.NewChatbot(model.ChatbotOptions{
		Provider:      provider,
		Retriever:     retriever,
		OwnerName:     func() string { return store.Profile().Name },
		HistoryBudget: cfg.Chat.HistoryBudget,
		Timeout:       cfg.Chat.TimeoutDuration(),
	})

	siteName := cfg.SiteUrl
	if u, err := url.Parse(cfg.SiteUrl); err == nil && u.Host != "" {
		siteName = u.Host
	}

	return &Services{
		Config:  cfg,
		Content: store,
		Guard:   guard,
		CSP:     telemetry.NewCSPLog(telemetry.DefaultCSPCapacity),
		Vitals:  telemetry.NewVitals(telemetry.DefaultVitalsCapacity),
		Uptime:  telemetry.NewUptime(cfg.Version),
		Chatbot: chatbot,
		Mailer:  email.New(email.Options{Env: cfg.Env, From: cfg.Email.From, NotifyTo: cfg.Email.NotifyTo, SiteName: siteName}),
	}, nil
}

// RegisterHooks connects handler events to email delivery. Delivery failures come back
// as api errors, which handlers log without failing the request.
func (s *Services) RegisterHooks() {
	hooks.RegisterHook(hooks.HealthCheck, func(params hooks.HookParams) *types.ApiError {
		if s.draining.Load() {
			return &types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "shutting down"}
		}
		return nil
	})

	hooks.RegisterHook(hooks.ContactSubmitted, func(params hooks.HookParams) *types.ApiError {
		if err := s.Mailer.SendContactNotification(params.Contact); err != nil {
			return &types.ApiError{Type: types.ApiErrorTypeOther, Status: http.StatusBadGateway, Msg: err.Error()}
		}
		return nil
	})

	hooks.RegisterHook(hooks.CommentCreated, func(params hooks.HookParams) *types.ApiError {
		if err := s.Mailer.SendCommentNotification(params.Comment); err != nil {
			return &types.ApiError{Type: types.ApiErrorTypeOther, Status: http.StatusBadGateway, Msg: err.Error()}
		}
		return nil
	})

	hooks.RegisterHook(hooks.NewsletterSubscribed, func(params hooks.HookParams) *types.ApiError {
		p := params.NewsletterSubscribedParams
		confirmUrl := s.Config.SiteUrl + "/api/newsletter/confirm?token=" + url.QueryEscape(p.ConfirmToken)
		if err := s.Mailer.SendNewsletterConfirmation(p.Subscriber.Email, confirmUrl); err != nil {
			return &types.ApiError{Type: types.ApiErrorTypeOther, Status: http.StatusBadGateway, Msg: err.Error()}
		}
		return nil
	})

	if s.Config.IsProduction() {
		notify.RegisterAlerter(s.alertOwner)
	}
}

func (s *Services) alertOwner(summary string) {
	if err := s.Mailer.SendErrorAlert(summary); err != nil {
		zap.L().Warn("Error sending error alert", zap.Error(err))
	}
}

// Handler builds the router and wraps it, outermost first: recover, request log,
// security headers, guard, gzip.
func (s *Services) Handler() (http.Handler, error) {
	err := handlers.Init(handlers.Deps{
		Config:  s.Config,
		Content: s.Content,
		Guard:   s.Guard,
		CSP:     s.CSP,
		Vitals:  s.Vitals,
		Uptime:  s.Uptime,
		Chatbot: s.Chatbot,
	})
	if err != nil {
		return nil, err
	}

	r := routes.NewRouter(s.Config.Version)

	return Chain(r,
		Recoverer,
		RequestLogger(s.Guard.ClientIP),
		security.SecurityHeaders(s.Config.IsProduction()),
		s.Guard.Middleware,
		func(h http.Handler) http.Handler { return gzhttp.GzipHandler(h) },
	), nil
}

// StartServer serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains.
func (s *Services) StartServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.Config.IsDevelopment() {
		zap.L().Info("In development mode.")
	}

	h, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + s.Config.Port,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	bgCtx, cancelBg := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	s.startBackground(bgCtx, &wg)

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Started server", zap.String("port", s.Config.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		cancelBg()
		wg.Wait()
		if err != nil {
			return fmt.Errorf("failed to start server on port %s: %v", s.Config.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down server")
	s.draining.Store(true)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	cancelBg()
	wg.Wait()

	if err != nil {
		return fmt.Errorf("error shutting down server: %v", err)
	}

	if err := db.Close(); err != nil {
		zap.L().Warn("Error closing database", zap.Error(err))
	}

	zap.L().Info("Server stopped")
	return nil
}

func (s *Services) startBackground(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.Guard.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		if err := s.Content.Watch(ctx); err != nil {
			notify.NotifyErr(notify.SeverityInfo, fmt.Errorf("profile watcher stopped: %v", err))
		}
	}()

	go func() {
		defer wg.Done()
		cleanupAuthTokens(ctx, tokenCleanupInterval)
	}()
}

func cleanupAuthTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if db.Conn == nil {
				continue
			}
			n, err := db.DeleteExpiredAuthTokens()
			if err != nil {
				notify.NotifyErr(notify.SeverityError, fmt.Errorf("error deleting expired auth tokens: %v", err))
				continue
			}
			if n > 0 {
				zap.L().Info("Deleted expired auth tokens", zap.Int64("count", n))
			}
		}
	}
}
