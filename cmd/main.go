package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	gommon "github.com/labstack/gommon/log"

	"crimson/pkg/files"
	"crimson/pkg/imagegen"
	"crimson/pkg/inference"
	"crimson/pkg/pipeline"
	"crimson/pkg/retry"
	"crimson/pkg/server"
	"crimson/pkg/storage"
	"crimson/pkg/textgen"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	openAI := inference.NewOpenAIInferencer(apiKey, model)
	if apiKey == "" {
		openAI.ChangeBaseURL("http://localhost:1234/v1")
		openAI.SetModel("")
	}
	var inf inference.Inferencer = openAI

	if grokKey := os.Getenv("GROK_API_KEY"); grokKey != "" {
		inf = inference.NewGrokInferencer(grokKey, os.Getenv("GROK_MODEL"))
	}
	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		gemini, err := inference.NewGeminiInferencer(geminiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Fatal("gemini init failed", "error", err)
		}
		inf = gemini
	}

	var images imagegen.Client
	var queue *imagegen.Queue
	if sdURL := os.Getenv("SD_WEBUI_URL"); sdURL != "" {
		queue = imagegen.NewQueue(imagegen.NewSDWebUI(sdURL, retry.Interactive))
		queue.Start()
		images = queue
	} else {
		log.Warn("SD_WEBUI_URL not set, image stages will be skipped")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "crimson.db"
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		log.Fatal("opening storage failed", "error", err)
	}

	imagesDir := os.Getenv("IMAGES_DIR")
	if imagesDir == "" {
		imagesDir = "images"
	}
	fs := files.New(imagesDir)

	pipe := &pipeline.Pipeline{
		Text:   textgen.New(inf, retry.Interactive),
		Images: images,
		Store:  store,
		Files:  fs,
	}

	srv := server.NewServer(ctx, pipe, store, fs)
	srv.Echo.Logger.SetLevel(gommon.INFO)

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if queue != nil {
			queue.Stop()
		}
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("shutdown error", "error", err)
		}
		if err := store.Close(); err != nil {
			log.Error("closing storage", "error", err)
		}
		done()
		close(finishedShutDown)
	}()

	log.Info("server listening", "addr", addr)
	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
	}
	<-finishedShutDown
}
