package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/agent"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/chat"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/config"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/database"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/document"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/embeddings"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/graph"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/ingestion"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/llm"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/retrieval"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/vectorstore"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("configuration: %v", err)
	}

	switch os.Args[1] {
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "chat":
		chatCmd(cfg, logger, os.Args[2:])
	case "ask":
		askCmd(cfg, logger, os.Args[2:])
	case "list":
		listCmd(cfg, logger)
	case "delete":
		deleteCmd(cfg, logger, os.Args[2:])
	case "count":
		countCmd(cfg, logger)
	case "clear":
		clearCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// components groups everything a command needs, constructed once at startup
// and torn down on exit.
type components struct {
	pool      *pgxpool.Pool
	driver    neo4j.DriverWithContext
	store     *vectorstore.PostgresStore
	graph     *graph.Store
	processor *document.Processor
	ingest    *ingestion.Service
	retrieval *retrieval.Service
}

func setup(ctx context.Context, cfg config.Config, logger *log.Logger) (*components, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connection: %w", err)
	}

	if err := database.EnsureChunkSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("embedder setup: %w", err)
	}

	c := &components{
		pool:      pool,
		store:     vectorstore.NewPostgresStore(pool, embedder),
		processor: document.NewProcessor(cfg.ChunkSize, cfg.ChunkOverlap),
	}

	if cfg.Neo4jURI != "" {
		driver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("neo4j connection: %w", err)
		}
		c.driver = driver
		c.graph = graph.NewStore(driver)
		if err := c.graph.EnsureIndexes(ctx); err != nil {
			c.close(ctx)
			return nil, fmt.Errorf("ensure graph indexes: %w", err)
		}
	}

	var primary retrieval.Searcher
	if c.graph != nil {
		primary = c.graph
	}

	c.ingest = ingestion.NewService(c.processor, c.store, c.graph, logger)
	c.retrieval = retrieval.NewService(c.store, primary, cfg.TopK, cfg.RelevanceThreshold, logger)

	return c, nil
}

func (c *components) close(ctx context.Context) {
	if c.driver != nil {
		_ = c.driver.Close(ctx)
	}
	if c.pool != nil {
		c.pool.Close()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	file := flags.String("file", "", "path to a single document (.pdf, .txt, .md)")
	dir := flags.String("dir", cfg.DataDir, "path to a directory of documents")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer c.close(ctx)

	if *file != "" {
		count, err := c.ingest.IngestFile(ctx, *file)
		if err != nil {
			logger.Fatalf("ingestion failed: %v", err)
		}
		logger.Printf("done: %d chunks stored", count)
		return
	}

	logger.Printf("ingesting documents from %s", *dir)
	if err := c.ingest.IngestDirectory(ctx, *dir); err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}
}

func chatCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("chat", flag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse chat flags: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer c.close(ctx)

	session, err := newSession(cfg, c, logger)
	if err != nil {
		logger.Fatalf("session setup: %v", err)
	}

	fmt.Println("Ask questions about your documents. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		fmt.Println(session.Ask(ctx, question))
		fmt.Println()
	}
	if err := scanner.Err(); err != nil {
		logger.Fatalf("read question: %v", err)
	}
}

func askCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	question := flags.String("question", "", "question to ask about the ingested documents")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ask flags: %v", err)
	}
	if strings.TrimSpace(*question) == "" {
		logger.Fatal("ask requires --question")
	}

	ctx, cancel := signalContext()
	defer cancel()

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer c.close(ctx)

	session, err := newSession(cfg, c, logger)
	if err != nil {
		logger.Fatalf("session setup: %v", err)
	}

	fmt.Println(session.Ask(ctx, *question))
}

func newSession(cfg config.Config, c *components, logger *log.Logger) (*chat.Session, error) {
	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("llm setup: %w", err)
	}

	qa := agent.New(c.retrieval, client, cfg.MaxHistory, logger)
	return chat.NewSession(qa, logger), nil
}

func listCmd(cfg config.Config, logger *log.Logger) {
	ctx, cancel := signalContext()
	defer cancel()

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer c.close(ctx)

	infos, err := c.store.ListDocuments(ctx)
	if err != nil {
		logger.Fatalf("list documents: %v", err)
	}

	if len(infos) == 0 {
		fmt.Println("No documents ingested.")
		return
	}
	for _, info := range infos {
		fmt.Printf("%s  %s  (ingested %s)\n", info.DocumentID, info.SourceFile, info.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func deleteCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("delete", flag.ExitOnError)
	docID := flags.String("id", "", "document id to delete")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse delete flags: %v", err)
	}
	if *docID == "" {
		logger.Fatal("delete requires --id")
	}

	ctx, cancel := signalContext()
	defer cancel()

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer c.close(ctx)

	deleted, err := c.ingest.DeleteDocument(ctx, *docID)
	if err != nil {
		logger.Fatalf("delete document: %v", err)
	}
	logger.Printf("deleted %d chunks for document %s", deleted, *docID)
}

func countCmd(cfg config.Config, logger *log.Logger) {
	ctx, cancel := signalContext()
	defer cancel()

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer c.close(ctx)

	count, err := c.store.Count(ctx)
	if err != nil {
		logger.Fatalf("count chunks: %v", err)
	}
	fmt.Printf("%d chunks stored\n", count)
}

func clearCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("clear", flag.ExitOnError)
	confirmed := flags.Bool("confirm", false, "skip confirmation prompt")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse clear flags: %v", err)
	}

	if !*confirmed {
		fmt.Print("This will permanently delete all ingested documents. Continue? [y/N]: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Fatalf("read confirmation: %v", err)
			}
			logger.Println("clear aborted")
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			logger.Println("clear aborted")
			return
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer c.close(ctx)

	if err := c.ingest.Clear(ctx); err != nil {
		logger.Fatalf("clear: %v", err)
	}
	logger.Println("all ingested data removed")
}

func printUsage() {
	fmt.Println("Usage: doc-chat <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  ingest   Ingest documents (--file for one document, --dir for a directory)")
	fmt.Println("  chat     Interactive question answering over the ingested documents")
	fmt.Println("  ask      Answer a single question (--question)")
	fmt.Println("  list     List ingested documents")
	fmt.Println("  delete   Delete one document's chunks (--id)")
	fmt.Println("  count    Show how many chunks are stored")
	fmt.Println("  clear    Remove all ingested data")
}
