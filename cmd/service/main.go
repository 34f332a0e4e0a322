// El binario service levanta el servidor HTTP de crossgate con todo el
// wiring: Postgres, cache, emisor de tokens, federación y broker.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/crossgate-id/crossgate/internal/auth"
	"github.com/crossgate-id/crossgate/internal/broker"
	"github.com/crossgate-id/crossgate/internal/cache"
	"github.com/crossgate-id/crossgate/internal/config"
	"github.com/crossgate-id/crossgate/internal/events"
	"github.com/crossgate-id/crossgate/internal/federation"
	httpserver "github.com/crossgate-id/crossgate/internal/http"
	authctrl "github.com/crossgate-id/crossgate/internal/http/controllers/auth"
	dirctrl "github.com/crossgate-id/crossgate/internal/http/controllers/directory"
	fedctrl "github.com/crossgate-id/crossgate/internal/http/controllers/federation"
	healthctrl "github.com/crossgate-id/crossgate/internal/http/controllers/health"
	"github.com/crossgate-id/crossgate/internal/http/router"
	"github.com/crossgate-id/crossgate/internal/identity"
	"github.com/crossgate-id/crossgate/internal/jwt"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
	"github.com/crossgate-id/crossgate/internal/revocation"
	"github.com/crossgate-id/crossgate/internal/security/rsacrypt"
	"github.com/crossgate-id/crossgate/internal/state"
	"github.com/crossgate-id/crossgate/internal/store/pg"
)

func main() {
	// .env es opcional; el entorno del sistema siempre vale.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logEnv := "dev"
	if cfg.IsProduction() {
		logEnv = "prod"
	}
	logger.Init(logger.Config{Env: logEnv, Level: cfg.Log.Level, ServiceName: cfg.App.Name})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage.
	pool, err := pg.NewPool(ctx, cfg.Storage.DSN)
	if err != nil {
		logger.L().Fatal("postgres no disponible", logger.Err(err))
	}
	defer pool.Close()

	cacheClient, err := cache.New(cache.Config{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		Prefix:   cfg.Cache.Prefix,
	})
	if err != nil {
		logger.L().Fatal("cache no disponible", logger.Err(err))
	}
	defer cacheClient.Close()

	// Clave RSA para los secretos de federación.
	var keyring *rsacrypt.Keyring
	if cfg.Security.RSAPrivateKeyPath != "" {
		keyring, err = rsacrypt.LoadFile(cfg.Security.RSAPrivateKeyPath)
		if err != nil {
			logger.L().Fatal("clave rsa inválida", logger.Err(err))
		}
	}

	// Servicios de dominio.
	var notifier events.Notifier = events.Noop{}
	if cfg.Events.Enabled {
		notifier = events.NewLogNotifier()
	}

	verifier := identity.NewVerifier(identity.Deps{
		Identities: pg.NewIdentityRepo(pool),
		Events:     notifier,
	})

	issuer := jwt.NewIssuer(jwt.Config{
		Own: jwt.TrustedPair{
			Issuer:   cfg.JWT.Own.Issuer,
			Audience: cfg.JWT.Own.Audience,
			Secret:   []byte(cfg.JWT.Own.Secret),
		},
		Exchange: jwt.TrustedPair{
			Issuer:   cfg.JWT.Exchange.Issuer,
			Audience: cfg.JWT.Exchange.Audience,
			Secret:   []byte(cfg.JWT.Exchange.Secret),
		},
		AccessTTL:   cfg.JWT.AccessTTL,
		RefreshTTL:  cfg.JWT.RefreshTTL,
		ExchangeTTL: cfg.JWT.ExchangeTTL,
	}, nil)

	revocations := revocation.NewStore(cacheClient)
	states := state.NewStore(cacheClient)

	authService := auth.NewService(auth.Deps{
		Verifier:    verifier,
		Issuer:      issuer,
		Revocations: revocations,
		Events:      notifier,
	})

	federationService := federation.NewService(federation.Deps{
		Federations: pg.NewFederationRepo(pool),
		States:      states,
		Secrets:     keyring,
	})

	var brokerClient *broker.Client
	if cfg.Broker.BaseURL != "" {
		brokerClient = broker.New(broker.Config{
			BaseURL:      cfg.Broker.BaseURL,
			Realm:        cfg.Broker.Realm,
			ClientID:     cfg.Broker.ClientID,
			ClientSecret: cfg.Broker.ClientSecret,
			Timeout:      cfg.Broker.Timeout,
		})
	}

	// Superficie HTTP.
	handler := router.New(router.Deps{
		Auth: authctrl.NewControllers(authctrl.Deps{
			Auth:          authService,
			Issuer:        issuer,
			Broker:        brokerClient,
			SecureCookies: cfg.IsProduction(),
		}),
		Federation: fedctrl.NewControllers(fedctrl.Deps{
			Federation: federationService,
			Broker:     brokerClient,
			States:     states,
		}),
		Directory: &dirctrl.SearchController{Verifier: verifier},
		Health: &healthctrl.Controller{Checks: map[string]healthctrl.Pinger{
			"postgres": pool,
			"cache":    cacheClient,
		}},
	})

	srv := httpserver.NewServer(cfg.Server, handler)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.L().Fatal("server terminó con error", logger.Err(err))
		}
	case <-ctx.Done():
		logger.L().Info("señal recibida, drenando conexiones")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.L().Error("shutdown forzado", logger.Err(err))
		}
	}
}
