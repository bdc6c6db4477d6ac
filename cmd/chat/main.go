package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/sentiment-chat/backend/internal/app"
	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/infra/logging"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/chat"
)

type responder interface {
	SendMessage(ctx context.Context, text string) (chat.Reply, error)
}

func main() {
	configPath := flag.String("config", "", "optional YAML config file (defaults to $CONFIG_FILE)")
	memoryType := flag.String("memory", "", "memory strategy: buffer or summary")
	provider := flag.String("provider", "", "text generation provider: gemini, openai or ark")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	fmt.Println("Initializing Chatbot...")

	cfg, err := config.Load(*configPath, func(c *config.Config) {
		if *provider != "" {
			c.AI.Provider = config.Provider(strings.ToLower(*provider))
		}
		if *memoryType != "" {
			c.Memory.Strategy = config.MemoryStrategy(strings.ToLower(*memoryType))
		}
		// 命令行模式下默认只输出警告，避免日志淹没对话
		if os.Getenv("LOG_LEVEL") == "" {
			c.Log.Level = "warn"
		}
		if os.Getenv("LOG_FORMAT") == "" {
			c.Log.Format = "console"
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Set GOOGLE_API_KEY (gemini), OPENAI_API_KEY (openai) or ARK_API_KEY (ark) and choose it with AI_PROVIDER.")
		os.Exit(1)
	}
	logging.New(cfg.Log)

	components, err := app.Build(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	session, err := components.Factory.NewSession(uuid.NewString(), "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Using %s (%s) with %s memory; sentiment via %s.\n",
		cfg.AI.Provider, cfg.AI.ModelName(), cfg.Memory.Strategy, components.Analyzer.Active())

	if err := run(ctx, os.Stdin, os.Stdout, session); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run drives the read-respond loop until "exit", end of input or cancellation.
func run(ctx context.Context, in io.Reader, out io.Writer, session responder) error {
	fmt.Fprintf(out, "Chatbot: %s\n", chat.Greeting)
	fmt.Fprintln(out, `Type "exit" to quit.`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Chatbot: Goodbye!")
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(text, "exit") {
			fmt.Fprintln(out, "Chatbot: Goodbye!")
			return nil
		}
		if text == "" {
			continue
		}

		reply, err := session.SendMessage(ctx, text)
		switch {
		case err == nil:
			fmt.Fprintf(out, "Detected sentiment: %s (Score: %.2f)\n", reply.Sentiment.Label, reply.Sentiment.Score)
			fmt.Fprintf(out, "Chatbot: %s\n", reply.Text)
		case chat.IsGenerationError(err):
			fmt.Fprintf(out, "Chatbot: %s\n", chat.FallbackReply)
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(out, "Chatbot: Goodbye!")
			return nil
		default:
			return err
		}
	}
}
