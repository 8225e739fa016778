package cmds

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/portfoliobuilder/intake/internal/config"
	"github.com/portfoliobuilder/intake/internal/database"
)

const name string = "github.com/portfoliobuilder/intake/cmd/intakectl/cmds"

var tracer = otel.Tracer(name)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "intakectl",
	Short:         "Operator commands for the intake service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openDB loads the same config the server uses and connects to its database.
func openDB(ctx context.Context) (*gorm.DB, func(), error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}

	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	return db, closer, nil
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Directory containing intake.yaml")
}
