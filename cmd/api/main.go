package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voiceprep/interview-agent/internal/config"
	"github.com/voiceprep/interview-agent/internal/handler"
	"github.com/voiceprep/interview-agent/internal/questionbank"
	"github.com/voiceprep/interview-agent/internal/service/dialogue"
	"github.com/voiceprep/interview-agent/internal/service/evaluation"
	interviewService "github.com/voiceprep/interview-agent/internal/service/interview"
	"github.com/voiceprep/interview-agent/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Load the opening question bank. A missing artifact is not fatal; the
	// fixed fallback question covers every role.
	bank, err := questionbank.Load(cfg.Interview.QuestionBankPath)
	if err != nil {
		log.Printf("warning: question bank unavailable, using fallback question only: %v", err)
		bank = questionbank.New(nil)
	}

	// Initialize the Ark chat model shared by dialogue and evaluation.
	deps := interviewService.Deps{Questions: bank}
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing without interviewer functionality")
		} else {
			memoryWindow := cfg.Interview.MemoryWindow
			deps.Engines = func(ctx context.Context, role string) (interviewService.DialogueEngine, error) {
				engine, err := dialogue.NewService(ctx, chatModel, role, memoryWindow)
				if err != nil {
					return nil, err
				}
				return engine, nil
			}

			evaluator, err := evaluation.NewService(ctx, chatModel)
			if err != nil {
				log.Printf("warning: failed to initialize evaluation service: %v", err)
			} else {
				deps.Evaluator = evaluator
			}
			log.Println("chat model initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, interviewer endpoints will report unavailable")
	}

	// Initialize the speech service when credentials are present. Without it
	// the interview still runs in text-only mode.
	var speechSvc *speech.Service
	if cfg.Speech.Enabled {
		speechSvc = speech.NewService(cfg.Speech.SpeechModel())
		deps.Transcriber = speechSvc
		deps.Synthesizer = speechSvc
		log.Println("speech service initialized successfully")
	} else {
		log.Println("speech credentials not configured, running text-only")
	}

	sessions := interviewService.NewService(deps)
	router := handler.NewRouter(sessions, bank, speechSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("interview agent listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
