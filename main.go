// Package main circulation API.
//
// @title           Circulation API
// @version         1.0
// @description     Library circulation engine (catalog, accounts, loans, fines).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"circulation/app/echoServer"
	authctrl "circulation/app/echoServer/controller/auth"
	bookctrl "circulation/app/echoServer/controller/book"
	borrowctrl "circulation/app/echoServer/controller/borrow"
	searchctrl "circulation/app/echoServer/controller/search"
	userctrl "circulation/app/echoServer/controller/user"
	"circulation/app/echoServer/validation"
	"circulation/config"
	bookrepo "circulation/repository/book"
	borrowrepo "circulation/repository/borrow"
	"circulation/repository/memstore"
	notifyrepo "circulation/repository/notify"
	"circulation/repository/otp"
	userrepo "circulation/repository/user"
	authsvc "circulation/service/auth"
	booksvc "circulation/service/book"
	borrowsvc "circulation/service/borrow"
	scannersvc "circulation/service/scanner"
	searchsvc "circulation/service/search"
	usersvc "circulation/service/user"
	"circulation/util/database"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/sync/errgroup"
)

func main() {

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// stores: postgres when DATABASE_URL is set, in-memory otherwise
	var (
		bookR   booksvc.Repo
		userR   usersvc.Repo
		authR   authsvc.Repo
		borrowR borrowsvc.Repo
		scanR   scannersvc.Repo
	)
	if cfg.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.Error("db migrate failed", "err", err)
			os.Exit(1)
		}
		bookR = bookrepo.New(db)
		userR = userrepo.New(db)
		authR = userrepo.New(db)
		br := borrowrepo.New(db)
		borrowR, scanR = br, br
		log.Info("store", "kind", "postgres")
	} else {
		mem := memstore.New()
		bookR = mem.Books()
		userR = mem.Users()
		authR = mem.Users()
		borrowR = mem.Borrows()
		scanR = mem.Borrows()
		log.Info("store", "kind", "memory")
	}

	// outbound notifications: webhook when configured, log otherwise
	var notif notifyrepo.Notifier = &notifyrepo.LogNotifier{Log: log}
	if cfg.OverdueWebhookURL != "" {
		notif = notifyrepo.NewWebhook(cfg.OverdueWebhookURL)
	}

	// OTP challenges need redis; without it the profile-change flows
	// answer INVALID_STATE.
	var (
		userOTP usersvc.OTPStore
		authOTP authsvc.OTPStore
	)
	if cfg.RedisAddr != "" {
		o := otp.New(cfg.RedisAddr, cfg.RedisPass)
		userOTP, authOTP = o, o
	}

	// services
	as := authsvc.New(authR, authOTP, notif, cfg.JWTSecret)
	bs := booksvc.New(bookR)
	us := usersvc.New(userR, userOTP, notif)
	rs := borrowsvc.New(borrowR, cfg.LoanPeriod(), cfg.FinePerDay)
	ss := searchsvc.New(bookR, userR, borrowR)
	sweeper := scannersvc.New(scanR, notif, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: rs, V: v, Log: log}
	searchC := &searchctrl.Controller{Svc: ss, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:   authC,
		Book:   bookC,
		User:   userC,
		Borrow: borrowC,
		Search: searchC,

		JWTSecret: cfg.JWTSecret,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx, cfg.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
