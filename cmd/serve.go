package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anoixa/pixelwise/api/core"
	"github.com/anoixa/pixelwise/config"
	"github.com/anoixa/pixelwise/database"
	"github.com/anoixa/pixelwise/internal/app"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	container := app.NewContainer(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := container.Init(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to initialize application: %v", err)
	}
	cancel()

	initDatabase(container)

	deps := &core.ServerDependencies{
		Config:            cfg,
		DB:                container.DB(),
		Store:             container.Store(),
		CacheProvider:     container.Cache(),
		GenerationService: container.GenerationService,
		GalleryService:    container.GalleryService,
		JWTService:        container.JWTService,
		LoginService:      container.LoginService,
	}

	// 启动gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}

// initDatabase 执行自动DDL并确保默认管理员存在
func initDatabase(container *app.Container) {
	if err := database.AutoMigrate(container.DB()); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	container.AccountsRepo.CreateDefaultAdminUser()

	log.Println("Database initialized successfully")
}
