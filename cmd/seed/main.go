// Command seed writes the default leave categories and role permissions for
// one organization. Existing rows are kept, so it is safe to run again.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-leave-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/leave"
	rbacService "github.com/cmlabs-hris/hris-leave-go/internal/service/rbac"
)

func main() {
	orgID := flag.String("org", "", "organization id to seed (required)")
	tokenFor := flag.String("token-for", "", "also print an access token for this employee id")
	flag.Parse()

	if err := run(*orgID, *tokenFor); err != nil {
		log.Fatal(err)
	}
}

func run(orgID, tokenFor string) error {
	if validator.IsEmpty(orgID) {
		return fmt.Errorf("-org is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(appHTTP.NewLogger(os.Stderr, cfg.App.Env, "seed", cfg.SlogLevel()))

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{MaxConns: 2, MinConns: 1})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	enforcer, err := rbacService.NewEnforcer()
	if err != nil {
		return err
	}
	rbacSvc := rbacService.NewRBACService(transactor, enforcer, postgresql.NewEmployeeRepository(db), postgresql.NewRolePermissionRepository(db))
	categorySvc := leave.NewCategoryService(postgresql.NewLeaveCategoryRepository(db), rbacSvc)

	grants, err := rbacSvc.SeedDefaults(ctx, orgID)
	if err != nil {
		return fmt.Errorf("seed role permissions: %w", err)
	}
	categories, err := categorySvc.SeedDefaults(ctx, orgID)
	if err != nil {
		return fmt.Errorf("seed leave categories: %w", err)
	}
	slog.Info("organization seeded", "organization_id", orgID, "grants_added", grants, "categories_added", categories)

	if tokenFor != "" {
		token, _, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(tokenFor, orgID)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		fmt.Println(token)
	}
	return nil
}
