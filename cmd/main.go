package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/facegate/facegate/internal/camera"
	gocvcam "github.com/facegate/facegate/internal/camera/gocv"
	"github.com/facegate/facegate/internal/clock"
	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/credential"
	"github.com/facegate/facegate/internal/facerec"
	"github.com/facegate/facegate/internal/facerec/goface"
	"github.com/facegate/facegate/internal/feedback"
	"github.com/facegate/facegate/internal/logger"
	"github.com/facegate/facegate/internal/model"
	"github.com/facegate/facegate/internal/repository/postgres"
	"github.com/facegate/facegate/internal/service"
	storage "github.com/facegate/facegate/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize player directory", "error", err)
	}
	defer db.Close()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	photoStore, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize photo store", "error", err)
	}

	faceEngine, err := goface.NewEngine(cfg.Face.ModelsDir)
	if err != nil {
		logger.Fatal("failed to initialize face engine", "error", err)
	}
	defer faceEngine.Close()

	device, err := gocvcam.Open(cfg.Camera.MaxDeviceIndex, cfg.Camera.FrameWidth, cfg.Camera.FrameHeight)
	if err != nil {
		logger.Fatal("failed to open camera", "error", err)
	}

	session := camera.NewSession(device, faceEngine, cfg.Camera.CaptureRetries, logger)
	defer func() {
		if err := session.Release(); err != nil {
			logger.Error("failed to release camera", "error", err)
		}
	}()

	playerRepo := postgres.NewPlayerRepository(db)
	authService := service.NewAuth(
		playerRepo,
		photoStore,
		faceEngine,
		facerec.NewMatcher(cfg.Face.Tolerance),
		credential.NewHasher(cfg.Auth.Salt),
		feedback.NewBell(),
		clock.New(),
		logger,
	)

	logAppVersion()

	runAuthLoop(ctx, authService, session, logger)

	logger.Info("shutting down")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// runAuthLoop drives the workflows from a line-oriented prompt until
// the player quits or the process receives a termination signal.
func runAuthLoop(ctx context.Context, auth *service.Auth, session *camera.Session, logger *logger.Logger) {
	lines := make(chan string)
	scanner := bufio.NewScanner(os.Stdin)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Println("commands: login, register, top, quit")
	for {
		fmt.Print("> ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok = <-lines:
			if !ok {
				return
			}
		}

		switch strings.TrimSpace(line) {
		case "login":
			handleAuth(ctx, auth, session, service.ModeLogin, lines)
		case "register":
			handleAuth(ctx, auth, session, service.ModeRegister, lines)
		case "top":
			printLeaderboard(ctx, auth)
		case "quit", "exit", "q":
			return
		case "":
		default:
			fmt.Println("commands: login, register, top, quit")
		}
	}
}

func handleAuth(ctx context.Context, auth *service.Auth, session *camera.Session, mode service.Mode, lines <-chan string) {
	username := prompt(ctx, "username: ", lines)
	password := prompt(ctx, "password: ", lines)

	fmt.Println("look at the camera...")
	photo, err := session.CapturePhoto(ctx)
	if err != nil {
		printOutcome("Could not capture a photo with a visible face", model.DisplayColorFailure)
		return
	}

	switch mode {
	case service.ModeRegister:
		err = auth.Enroll(ctx, username, password, photo)
		_, msg, color := service.Outcome(mode, err)
		printOutcome(msg, color)
	case service.ModeLogin:
		player, verifyErr := auth.Verify(ctx, username, password, photo)
		ok, msg, color := service.Outcome(mode, verifyErr)
		printOutcome(msg, color)
		if ok {
			fmt.Printf("welcome back, %s (high score %d)\n", player.Username, player.HighScore)
		}
	}
}

func printLeaderboard(ctx context.Context, auth *service.Auth) {
	entries, err := auth.Leaderboard(ctx, service.DefaultLeaderboardLimit)
	if err != nil {
		printOutcome("Could not load leaderboard", model.DisplayColorFailure)
		return
	}
	for i, e := range entries {
		fmt.Printf("%2d. %-20s %8d\n", i+1, e.Username, e.HighScore)
	}
}

func prompt(ctx context.Context, label string, lines <-chan string) string {
	fmt.Print(label)
	select {
	case <-ctx.Done():
		return ""
	case line := <-lines:
		return strings.TrimSpace(line)
	}
}

func printOutcome(message string, color model.DisplayColor) {
	code := "\033[31m"
	if color == model.DisplayColorSuccess {
		code = "\033[32m"
	}
	fmt.Printf("%s%s\033[0m\n", code, message)
}
