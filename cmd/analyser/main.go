package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-analyser/internal/chat"
	"github.com/dvloznov/statement-analyser/internal/config"
	"github.com/dvloznov/statement-analyser/internal/llm"
	"github.com/dvloznov/statement-analyser/internal/logger"
	"github.com/dvloznov/statement-analyser/internal/pipeline"
	"github.com/dvloznov/statement-analyser/internal/stats"
	"github.com/dvloznov/statement-analyser/internal/store"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyse":
		runAnalyse(log)
	case "chat":
		runChat(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Bank Statement Analyser")
	fmt.Println("\nUsage:")
	fmt.Println("  analyser <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyse   Interpret and categorize a statement CSV, then chat about it")
	fmt.Println("  chat      Chat about a previously analysed statement CSV")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'analyser <command> -h' for more information on a command.")
}

func runAnalyse(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyse", flag.ExitOnError)
	inputPath := fs.String("input", "", "Path to the statement CSV export")
	outputPath := fs.String("output", "", "Output path (default: <OUTPUT_DIR>/<input>.analysed.csv)")
	noChat := fs.Bool("no-chat", false, "Skip the chat loop after analysis")
	fs.Parse(os.Args[2:])

	if *inputPath == "" {
		log.Fatal().Msg("Error: -input is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration invalid")
	}

	if *outputPath == "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			log.Fatal().Err(err).Msg("Cannot create output directory")
		}
		base := strings.TrimSuffix(filepath.Base(*inputPath), filepath.Ext(*inputPath))
		*outputPath = filepath.Join(cfg.OutputDir, base+".analysed.csv")
	}

	ctx := logger.WithContext(context.Background(), log)
	client := llm.NewClient(cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("Completion service unreachable")
	}

	log.Info().
		Str("input", *inputPath).
		Str("output", *outputPath).
		Str("model", client.Model()).
		Msg("Starting analysis")

	state := pipeline.NewState(store.NewCSVStore(), client, *inputPath, *outputPath, cfg.MaxWorkers)
	if err := pipeline.NewAnalysisPipeline().Execute(ctx, state); err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	summary := stats.Compute(state.Interpreted)
	printSummary(summary, state.Metrics.Snapshot())
	fmt.Printf("Analysed statement written to %s\n", *outputPath)

	if *noChat {
		return
	}
	chatLoop(ctx, client, summary, state.Interpreted)
}

func runChat(log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	inputPath := fs.String("input", "", "Path to a previously analysed statement CSV")
	fs.Parse(os.Args[2:])

	if *inputPath == "" {
		log.Fatal().Msg("Error: -input is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration invalid")
	}

	ctx := logger.WithContext(context.Background(), log)
	client := llm.NewClient(cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("Completion service unreachable")
	}

	rows, err := store.NewCSVStore().LoadInterpreted(ctx, *inputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load analysed statement")
	}

	summary := stats.Compute(rows)
	printSummary(summary, pipeline.Snapshot{})
	chatLoop(ctx, client, summary, rows)
}

func printSummary(s stats.Summary, m pipeline.Snapshot) {
	heading := color.New(color.Bold)

	fmt.Println()
	heading.Println("PROCESSING SUMMARY")
	fmt.Printf("Transactions: %d (%d interpreted, %d failed)\n", s.TotalRows, s.Interpreted, s.FailedRows)
	if !s.DateFrom.IsZero() {
		fmt.Printf("Date range:   %s to %s\n", s.DateFrom.Format("2006-01-02"), s.DateTo.Format("2006-01-02"))
	}
	fmt.Printf("Total debits:  INR %s\n", s.TotalDebit.StringFixed(2))
	fmt.Printf("Total credits: INR %s\n", s.TotalCredit.StringFixed(2))
	fmt.Printf("Net:           INR %s\n", s.Net.StringFixed(2))

	if len(s.ByCategory) > 0 {
		fmt.Println()
		heading.Printf("Categories found: %d\n", len(s.ByCategory))
		for _, name := range s.CategoriesBySpend() {
			ct := s.ByCategory[name]
			fmt.Printf("  - %-24s %4d txn  INR %s\n", name, ct.Count, ct.Sum.StringFixed(2))
		}
	}

	if m.MalformedNormalizations+m.MalformedCategorizations > 0 {
		fmt.Printf("\nMalformed model replies recovered with defaults: %d\n",
			m.MalformedNormalizations+m.MalformedCategorizations)
	}
	fmt.Println()
}

func chatLoop(ctx context.Context, client *llm.Client, summary stats.Summary, rows []*pipeline.InterpretedTransaction) {
	log := logger.FromContext(ctx)

	session := chat.NewSession(client, chat.BuildDigest(summary, rows))
	log.Info().Str("session_id", session.ID()).Msg("Chat session started")

	userPrompt := color.New(color.FgCyan, color.Bold)
	assistant := color.New(color.FgGreen)

	fmt.Println("Ask questions about your transactions. Type 'exit' or 'quit' to end.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		userPrompt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if chat.IsExitCommand(input) {
			session.End()
			fmt.Println("Goodbye!")
			break
		}

		answer, err := session.Ask(ctx, input)
		if err != nil {
			if errors.Is(err, chat.ErrSessionEnded) {
				break
			}
			log.Error().Err(err).Msg("Chat turn failed, ending session")
			break
		}
		assistant.Println("\nAssistant: " + answer)
		fmt.Println()
	}
}
