package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-leave-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	approvalService "github.com/cmlabs-hris/hris-leave-go/internal/service/approval"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/leave"
	rbacService "github.com/cmlabs-hris/hris-leave-go/internal/service/rbac"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App.Env, version, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, idempotency keys are not enforced", "addr", cfg.Redis.Addr, "error", err)
	}

	translator, err := i18n.NewTranslator(cfg.App.DefaultLocale)
	if err != nil {
		return err
	}

	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	rolePermissionRepo := postgresql.NewRolePermissionRepository(db)
	leaveCategoryRepo := postgresql.NewLeaveCategoryRepository(db)
	leaveEntitlementRepo := postgresql.NewLeaveEntitlementRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	departmentApproverRepo := postgresql.NewDepartmentApproverRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	enforcer, err := rbacService.NewEnforcer()
	if err != nil {
		return err
	}
	rbacSvc := rbacService.NewRBACService(transactor, enforcer, employeeRepo, rolePermissionRepo)

	approvalSvc := approvalService.NewApprovalService(transactor, departmentApproverRepo, leaveRequestRepo, employeeRepo, rbacSvc)
	ledger := leave.NewLedger(leaveEntitlementRepo)
	requestSvc := leave.NewRequestService(transactor, leaveCategoryRepo, leaveRequestRepo, employeeRepo, ledger, approvalSvc, rbacSvc)
	categorySvc := leave.NewCategoryService(leaveCategoryRepo, rbacSvc)
	entitlementSvc := leave.NewEntitlementService(transactor, leaveEntitlementRepo, leaveCategoryRepo, employeeRepo, rbacSvc)

	leaveHandler := appHTTP.NewLeaveHandler(requestSvc, categorySvc, entitlementSvc)
	approvalHandler := appHTTP.NewApprovalHandler(approvalSvc)
	permissionHandler := appHTTP.NewPermissionHandler(rbacSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			Idempotency:    middleware.Idempotency(redisClient, cfg.Idempotency.TTL),
		},
		JWTService,
		translator,
		leaveHandler,
		approvalHandler,
		permissionHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
