package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	pgrepo "github.com/okravchenko/contactbook/internal/adapters/db/postgres"
	redisrepo "github.com/okravchenko/contactbook/internal/adapters/db/redis"
	"github.com/okravchenko/contactbook/internal/adapters/mail"
	s3store "github.com/okravchenko/contactbook/internal/adapters/storage/s3"
	httptransport "github.com/okravchenko/contactbook/internal/adapters/transport/http"
	authsvc "github.com/okravchenko/contactbook/internal/app/auth"
	contactsvc "github.com/okravchenko/contactbook/internal/app/contacts"
	"github.com/okravchenko/contactbook/internal/app/hash"
	"github.com/okravchenko/contactbook/internal/app/token"
	usersvc "github.com/okravchenko/contactbook/internal/app/users"
	"github.com/okravchenko/contactbook/internal/infra/config"
	lg "github.com/okravchenko/contactbook/internal/infra/log"
	"github.com/okravchenko/contactbook/internal/migrate"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	codec, err := token.NewCodec(cfg)
	if err != nil {
		zapLog.Fatal("failed to init token codec", zap.Error(err))
	}
	hasher := hash.New(cfg.PasswordPepper)

	mailer, err := mail.NewSMTPSender(cfg)
	if err != nil {
		zapLog.Fatal("failed to init mail sender", zap.Error(err))
	}

	avatarStore, err := s3store.NewAvatarStore(context.Background(), cfg)
	if err != nil {
		zapLog.Fatal("failed to init avatar store", zap.Error(err))
	}

	validate := validator.New()

	userRepo := pgrepo.NewUserRepo(db)
	contactRepo := pgrepo.NewContactRepo(db)
	userCache := redisrepo.NewRedisUserCache(redisCli, cfg.UserCacheTTL)

	auth := authsvc.New(userRepo, userCache, codec, hasher, mailer, cfg, validate, zapLog)
	users := usersvc.New(userRepo, avatarStore)
	contacts := contactsvc.New(contactRepo, validate)

	router := httptransport.NewRouter(auth, users, contacts, db, cfg, zapLog)

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	rootCtx, cancel := context.WithCancel(context.Background())
	g, _ := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
