// Command cli is the operator tooling for the identity server:
//
//	cli bootstrap   provision the seed account (idempotent)
//	cli hash        print a bcrypt hash for a prompted password
//
// Both prompt for the password without echo. Server flags (-d for the
// DSN, -n for the seed handle, -w for the bcrypt cost) apply.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/patchmemory/kindmesh/internal/cryptox"
	"github.com/patchmemory/kindmesh/internal/server/config"
	"github.com/patchmemory/kindmesh/internal/server/repositories/repomanager"
	"github.com/patchmemory/kindmesh/internal/server/services"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: cli <bootstrap|hash> [flags]")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	var err error
	switch os.Args[1] {
	case "bootstrap":
		err = runBootstrap(ctx, cfg)
	case "hash":
		err = runHash(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

func runBootstrap(ctx context.Context, cfg *config.Config) error {
	password, err := promptPassword(fmt.Sprintf("password for seed account %q", cfg.SeedHandle))
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	directory := services.NewDirectoryService(db, rm, cfg)
	account, err := directory.EnsureSeed(ctx, cfg.SeedHandle, password)
	if err != nil {
		return err
	}

	fmt.Printf("seed account %q ready (created %s)\n", account.Handle, account.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runHash(cfg *config.Config) error {
	password, err := promptPassword("password to hash")
	if err != nil {
		return err
	}

	hash, err := cryptox.NewVerifier(cfg.BcryptCost).Hash(password)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}
