package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anoixa/pixelwise/database/models"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long:  `Migrate data from one database to another (e.g., SQLite to PostgreSQL).`,
}

// migrateRunCmd 执行迁移命令
var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run database migration",
	Long: `Run database migration from a SQLite file to a PostgreSQL database.

Examples:
  pixelwise migrate run --from-sqlite ./data/pixelwise.db --to-postgres "host=localhost user=postgres password=secret dbname=pixelwise port=5432"`,
	Run: func(cmd *cobra.Command, args []string) {
		fromSQLite, _ := cmd.Flags().GetString("from-sqlite")
		toPostgres, _ := cmd.Flags().GetString("to-postgres")
		batchSize, _ := cmd.Flags().GetInt("batch-size")

		if err := runMigration(fromSQLite, toPostgres, batchSize); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateRunCmd)

	migrateRunCmd.Flags().String("from-sqlite", "", "Source SQLite file path")
	migrateRunCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string")
	migrateRunCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
}

func runMigration(fromSQLite, toPostgres string, batchSize int) error {
	if fromSQLite == "" || toPostgres == "" {
		return fmt.Errorf("both --from-sqlite and --to-postgres are required")
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	source, err := gorm.Open(sqlite.Open(fromSQLite), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}

	target, err := gorm.Open(postgres.Open(toPostgres), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open target database: %w", err)
	}

	if err := target.AutoMigrate(&models.User{}, &models.Device{}, &models.Image{}); err != nil {
		return fmt.Errorf("failed to migrate target schema: %w", err)
	}

	if err := copyTable[models.User](source, target, batchSize, "users"); err != nil {
		return err
	}
	if err := copyTable[models.Device](source, target, batchSize, "devices"); err != nil {
		return err
	}
	if err := copyTable[models.Image](source, target, batchSize, "images"); err != nil {
		return err
	}

	log.Println("Migration completed successfully")
	return nil
}

func copyTable[T any](source, target *gorm.DB, batchSize int, name string) error {
	var rows []T
	var migrated int

	result := source.FindInBatches(&rows, batchSize, func(tx *gorm.DB, batch int) error {
		if err := target.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert %s batch %d: %w", name, batch, err)
		}
		migrated += len(rows)
		return nil
	})
	if result.Error != nil {
		return fmt.Errorf("failed to migrate %s: %w", name, result.Error)
	}

	log.Printf("Migrated %d %s", migrated, name)
	return nil
}
