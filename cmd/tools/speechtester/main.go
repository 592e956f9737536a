package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/voiceprep/interview-agent/internal/config"
	"github.com/voiceprep/interview-agent/internal/service/speech"
)

// Manual check for the Volcengine speech credentials: transcribe a local
// recording or synthesize a line of interviewer speech to a file.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if !cfg.Speech.Enabled {
		log.Fatal("speech service not configured: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")
	}

	mode := flag.String("mode", "", "test mode: asr or tts")
	audioPath := flag.String("audio", "", "input audio file path for asr mode")
	text := flag.String("text", "", "input text for tts mode")
	outputPath := flag.String("out", "", "output audio file path for tts mode")
	format := flag.String("format", "", "audio format of the asr input")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	if *mode != "asr" && *mode != "tts" {
		flag.Usage()
		log.Fatal("specify a test mode with -mode=asr or -mode=tts")
	}

	svc := speech.NewService(cfg.Speech.SpeechModel())
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "asr":
		runASR(ctx, svc, *audioPath, *format)
	case "tts":
		runTTS(ctx, svc, *text, *outputPath)
	}
}

func runASR(ctx context.Context, svc *speech.Service, audioPath, format string) {
	if audioPath == "" {
		log.Fatal("asr mode requires -audio with a file path")
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		log.Fatalf("failed to read audio file: %v", err)
	}

	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(audioPath)), ".")
		if format == "" {
			format = "wav"
		}
	}

	log.Printf("transcribing %s (%d bytes, format=%s)", audioPath, len(audio), format)

	text, err := svc.Transcribe(ctx, audio, format)
	if err != nil {
		log.Fatalf("transcription failed: %v", err)
	}

	log.Printf("transcription succeeded: %q", text)
}

func runTTS(ctx context.Context, svc *speech.Service, text, outputPath string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("tts mode requires -text with content to synthesize")
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("tts-output-%d.mp3", time.Now().Unix())
	}

	log.Printf("synthesizing %d chars", len(text))

	resp, err := svc.Synthesize(ctx, text)
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}

	if err := os.WriteFile(outputPath, resp.Audio, 0o644); err != nil {
		log.Fatalf("failed to write audio file: %v", err)
	}

	log.Printf("synthesis succeeded: wrote %s (%dms)", outputPath, resp.Duration)
}
