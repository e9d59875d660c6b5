package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pavelanni/quizgen/internal/handler"
	appI18n "github.com/pavelanni/quizgen/internal/i18n"
	"github.com/pavelanni/quizgen/internal/llm"
	"github.com/pavelanni/quizgen/internal/model"
	"github.com/pavelanni/quizgen/internal/present"
	"github.com/pavelanni/quizgen/internal/quiz"
	"github.com/pavelanni/quizgen/internal/store"
	"github.com/pavelanni/quizgen/internal/usage"
)

var errNoQuestions = errors.New("no questions generated")

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quizgen",
		Short: "Generate multiple-choice quiz questions with an LLM",
		RunE:  runGenerate,
	}
	f := root.Flags()
	addRequestFlags(f)
	f.String("mode", string(model.ModeJSON), "Output mode: json for other programs, interactive for a terminal quiz")
	addLLMFlags(f)
	addUsageFlags(f)
	addLogFlags(f)

	root.AddCommand(serveCmd(), usageCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated questions over HTTP",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	addRequestFlags(f)
	addLLMFlags(f)
	addUsageFlags(f)
	addLogFlags(f)
	return cmd
}

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Print the API usage count as JSON",
		RunE:  runUsage,
	}
	f := cmd.Flags()
	f.Int("limit", 20, "Number of recent calls to include (with --usage-db)")
	addUsageFlags(f)
	addLogFlags(f)
	return cmd
}

func addRequestFlags(f *pflag.FlagSet) {
	f.StringP("topic", "t", model.DefaultTopic, "Topic for questions")
	f.StringP("difficulty", "d", model.DefaultDifficulty, "Difficulty level")
	f.IntP("count", "n", model.DefaultCount, "Number of questions")
}

func addLLMFlags(f *pflag.FlagSet) {
	f.String("llm-url", llm.DefaultBaseURL, "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for LLM (or set QUIZGEN_LLM_KEY)")
	f.String("llm-model", llm.DefaultModel, "LLM model name")
	f.Float32("temperature", llm.DefaultTemperature, "Sampling temperature")
	f.Int("max-tokens", llm.DefaultMaxTokens, "Maximum tokens in the LLM reply")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
}

func addUsageFlags(f *pflag.FlagSet) {
	f.String("usage-file", "usage_count.txt", "File holding the API usage count")
	f.String("usage-db", "", "SQLite database for usage count and call log (replaces --usage-file)")
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	f.String("log-file", "", "Write logs to a rotated file instead of stderr")
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if path := v.GetString("log-file"); path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(w, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
// Variables from a .env file in the working directory are loaded first.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading .env file", "error", err)
	}

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizgen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizgen")
	v.AddConfigPath("/etc/quizgen")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func requestFromViper(v *viper.Viper) model.Request {
	return model.Request{
		Topic:      v.GetString("topic"),
		Difficulty: v.GetString("difficulty"),
		Count:      v.GetInt("count"),
	}
}

func newLLMClient(v *viper.Viper) *llm.Client {
	return llm.New(llm.Config{
		BaseURL:     v.GetString("llm-url"),
		APIKey:      v.GetString("llm-key"),
		Model:       v.GetString("llm-model"),
		Temperature: float32(v.GetFloat64("temperature")),
		MaxTokens:   v.GetInt("max-tokens"),
	})
}

// openUsage loads the usage counter. With --usage-db the SQLite store backs
// the counter and also records every call; the returned closer releases it.
func openUsage(v *viper.Viper) (*usage.Counter, quiz.Recorder, func(), error) {
	if dbPath := v.GetString("usage-db"); dbPath != "" {
		db, err := store.New(dbPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open usage database: %w", err)
		}
		counter, err := usage.Load(db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return counter, db, func() { db.Close() }, nil
	}

	counter, err := usage.Load(usage.NewFileBackend(v.GetString("usage-file")))
	if err != nil {
		return nil, nil, nil, err
	}
	return counter, nil, func() {}, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	mode, err := model.ParseMode(v.GetString("mode"))
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	counter, recorder, closeUsage, err := openUsage(v)
	if err != nil {
		return err
	}
	defer closeUsage()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx = appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(lang))

	svc := quiz.New(newLLMClient(v), counter, recorder)
	req := requestFromViper(v)
	slog.Debug("generating questions", "topic", req.Topic, "difficulty", req.Difficulty, "count", req.Count, "mode", mode)
	questions := svc.Generate(ctx, req)

	out := cmd.OutOrStdout()
	if mode == model.ModeJSON {
		return present.WriteJSON(out, questions)
	}

	if len(questions) == 0 {
		fmt.Fprintln(out, appI18n.T(ctx, "NoQuestions"))
		return errNoQuestions
	}
	q := &present.Quiz{In: cmd.InOrStdin(), Out: out}
	res := q.Run(ctx, questions)
	slog.Debug("quiz finished", "answered", res.Answered, "correct", res.Correct, "interrupted", res.Interrupted)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)
	cmd.SilenceUsage = true

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	counter, recorder, closeUsage, err := openUsage(v)
	if err != nil {
		return err
	}
	defer closeUsage()

	llmClient := newLLMClient(v)
	if err := llmClient.Ping(context.Background()); err != nil {
		slog.Warn("LLM health check failed", "url", v.GetString("llm-url"), "error", err)
	} else {
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", llmClient.Model())
	}

	h := handler.New(quiz.New(llmClient, counter, recorder), counter, requestFromViper(v))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"model", llmClient.Model(),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"usage_count", counter.Count(),
	)
	return http.ListenAndServe(addr, r)
}

func runUsage(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)
	cmd.SilenceUsage = true

	report := model.UsageReport{}
	if dbPath := v.GetString("usage-db"); dbPath != "" {
		db, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open usage database: %w", err)
		}
		defer db.Close()

		if report.Count, err = db.Load(); err != nil {
			return fmt.Errorf("load usage count: %w", err)
		}
		if report.Calls, err = db.ListCalls(v.GetInt("limit")); err != nil {
			return fmt.Errorf("list calls: %w", err)
		}
	} else {
		counter, err := usage.Load(usage.NewFileBackend(v.GetString("usage-file")))
		if err != nil {
			return err
		}
		report.Count = counter.Count()
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(out)
	return nil
}
