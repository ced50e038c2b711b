package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// session bundles everything a command needs to talk to the ledger.
type session struct {
	cfg    *config.Config
	store  *storage.SQLiteStorage
	ledger *ledger.Ledger
}

// Close releases the database.
func (s *session) Close() error {
	return s.store.Close()
}

// openSession loads configuration, opens the database and applies migrations.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	l := ledger.NewWithConfig(store, ledger.Config{
		RejectArchivedCategories: cfg.Ledger.RejectArchivedCategories,
	})

	return &session{cfg: cfg, store: store, ledger: l}, nil
}

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withSession runs fn against a freshly opened session and closes it afterwards.
func withSession(cmd *cobra.Command, fn func(s *session) error) (err error) {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}()
	return fn(s)
}

// parseKindFlag parses an optional --kind flag value.
func parseKindFlag(raw string) (*model.CategoryKind, error) {
	if raw == "" {
		return nil, nil
	}
	kind, err := model.ParseCategoryKind(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --kind %q: use income or expense", raw)
	}
	return &kind, nil
}

// resolveCategory finds a category by id or, failing that, by exact name.
// A name shared by an income and an expense category needs kind to
// disambiguate.
func resolveCategory(ctx context.Context, l *ledger.Ledger, ref string, kind *model.CategoryKind) (*model.Category, error) {
	cat, err := l.Categories.Get(ctx, ref)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	categories, err := l.Categories.List(ctx, categoryFilter(kind, true))
	if err != nil {
		return nil, err
	}

	var matches []model.Category
	for _, c := range categories {
		if c.Name == ref {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, common.NewNotFoundError("category", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("category name %q is ambiguous; pass --kind or use the id", ref)
	}
}

// describeError turns business errors into short user-facing text.
func describeError(err error) error {
	var validation *common.ValidationError
	if errors.As(err, &validation) {
		return fmt.Errorf("invalid %s: %s", validation.Field, validation.Message)
	}
	return err
}

func stringOrDash(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}

func confirmed(cmd *cobra.Command, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	in := cmd.InOrStdin()
	if in == os.Stdin {
		if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
			return false, errors.New("refusing to prompt on non-interactive input; pass --yes")
		}
	}
	return cli.Confirm(in, cmd.OutOrStdout(), question)
}
