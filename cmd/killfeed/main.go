// killfeed - Discord killfeed bot and stats server for game communities
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/emeraldservers/killfeed/internal/api"
	"github.com/emeraldservers/killfeed/internal/auth"
	"github.com/emeraldservers/killfeed/internal/bot"
	"github.com/emeraldservers/killfeed/internal/config"
	"github.com/emeraldservers/killfeed/internal/ingest"
	"github.com/emeraldservers/killfeed/internal/render"
	"github.com/emeraldservers/killfeed/internal/stats"
	"github.com/emeraldservers/killfeed/internal/storage"
)

var version = "dev"

const defaultConfigPath = "/etc/killfeed/config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		cmdInit(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "stats":
		cmdStats(os.Args[2:])
	case "leaderboard":
		cmdLeaderboard(os.Args[2:])
	case "token":
		cmdToken(os.Args[2:])
	case "version":
		fmt.Printf("killfeed %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: killfeed <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init [--config path]                Write a starter config (prompts for bot token)")
	fmt.Println("  serve                               Start the bot, event consumer, and HTTP API")
	fmt.Println("  stats <guild-id> <name> [--server]  Show a player's combined stats")
	fmt.Println("  leaderboard <guild-id> [--by kdr] [--top N]")
	fmt.Println("                                      Show the guild leaderboard (default: kills, 20)")
	fmt.Println("  token <name> [--admin]              Mint an API token")
	fmt.Println("  version                             Show version")
	fmt.Println("  help                                Show this help")
	fmt.Println()
	fmt.Println("Global Options:")
	fmt.Println("  --config <path>    Path to configuration file (default /etc/killfeed/config.yml)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  killfeed init --config ./config.yml")
	fmt.Println("  killfeed serve --config ./config.yml")
	fmt.Println("  killfeed stats 123456789 Shadow --server emerald-eu-1")
	fmt.Println("  killfeed leaderboard 123456789 --by kdr --top 10")
}

// cmdInit writes a starter config file. The bot token is prompted with
// echo off so it never lands in shell history or the terminal scrollback.
func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	if _, err := os.Stat(*configPath); err == nil {
		fmt.Printf("Config already exists at %s.\n", *configPath)
		fmt.Println("To re-initialize, remove the config file first.")
		return
	}

	fmt.Print("Discord bot token: ")
	token, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading token: %v\n", err)
		os.Exit(1)
	}
	if len(token) == 0 {
		fmt.Fprintln(os.Stderr, "Error: token cannot be empty")
		os.Exit(1)
	}

	cfg := &config.Config{
		Discord: config.DiscordConfig{
			Token: string(token),
		},
	}
	cfg.ApplyDefaults()

	if dir := filepath.Dir(*configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
			os.Exit(1)
		}
	}
	if err := config.Save(*configPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Config written to %s\n", *configPath)
	fmt.Println("Edit it to set the database path, assets directory, and auth secret,")
	fmt.Println("then run: killfeed serve --config " + *configPath)
}

// cmdServe runs everything: Discord bot, NATS consumer, and the HTTP API.
func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfgPath := *configPath
	if cfgPath == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			cfgPath = defaultConfigPath
		} else {
			log.Fatalf("No config file found at %s. Use --config to specify a config file.", defaultConfigPath)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Killfeed %s starting...", version)

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()
	log.Printf("Database initialized at %s", cfg.Database.Path)

	factory := render.NewFactory(cfg.Assets.Dir)

	// Discord
	discordBot, err := bot.New(cfg.Discord, store, factory)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	if err := discordBot.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	// Auth + HTTP API
	authService := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	if cfg.Auth.JWTSecret == "" {
		log.Printf("Warning: No JWT secret configured. Auth tokens will use an empty secret.")
	}
	router := api.NewRouter(store, authService)
	router.StartWebSocketHub()

	// Event bus
	natsURL := cfg.NATS.URL
	var embedded interface{ Shutdown() }
	if cfg.NATS.Embedded {
		srv, err := ingest.StartEmbeddedServer(cfg.NATS.Port)
		if err != nil {
			log.Fatalf("Failed to start embedded NATS server: %v", err)
		}
		embedded = srv
		natsURL = srv.ClientURL()
		log.Printf("Embedded NATS server listening on %s", natsURL)
	}

	consumer := ingest.NewConsumer(store, factory, discordBot, router.Hub())
	if err := consumer.Start(natsURL); err != nil {
		log.Fatalf("Failed to start event consumer: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case err := <-serverErr:
		log.Fatalf("HTTP server error: %v", err)
	}

	// Sequential shutdown: stop taking events first, then the outward
	// surfaces, then the broker.
	log.Println("Stopping event consumer...")
	consumer.Stop()

	log.Println("Shutting down HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := server.Shutdown(httpCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Closing Discord session...")
	if err := discordBot.Stop(); err != nil {
		log.Printf("Discord session close error: %v", err)
	}

	if embedded != nil {
		log.Println("Stopping embedded NATS server...")
		embedded.Shutdown()
	}

	log.Println("Shutdown complete")
}

// openStore loads the config (tolerating a missing bot token for local
// queries) and opens the database directly.
func openStore(configPath string) *storage.Store {
	dbPath := "/var/lib/killfeed/killfeed.db"
	if cfg, err := config.Load(configPath); err == nil {
		dbPath = cfg.Database.Path
	} else {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config from %s: %v\n", configPath, err)
	}

	store, err := storage.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	return store
}

// cmdStats prints a player's combined stats from the local database.
func cmdStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	serverID := fs.String("server", "", "restrict to a single game server")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: killfeed stats <guild-id> <name> [--server id]")
		os.Exit(1)
	}
	guildID, name := rest[0], rest[1]

	store := openStore(*configPath)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resolver := stats.NewResolver(store)
	characters, displayName, err := resolver.ResolveName(ctx, guildID, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	combined := stats.NewAggregator(store).Aggregate(ctx, guildID, characters, *serverID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Player:\t%s\n", displayName)
	fmt.Fprintf(w, "Kills:\t%d\n", combined.Kills)
	fmt.Fprintf(w, "Deaths:\t%d\n", combined.Deaths)
	fmt.Fprintf(w, "KDR:\t%.2f\n", combined.KDR)
	fmt.Fprintf(w, "Suicides:\t%d\n", combined.Suicides)
	fmt.Fprintf(w, "Best streak:\t%d\n", combined.BestStreak)
	fmt.Fprintf(w, "Best distance:\t%.0fm\n", combined.BestDistance)
	fmt.Fprintf(w, "Servers played:\t%d\n", combined.ServersPlayed)
	if combined.FavoriteWeapon != "" {
		fmt.Fprintf(w, "Favorite weapon:\t%s\n", combined.FavoriteWeapon)
	}
	if combined.Rival != "" {
		fmt.Fprintf(w, "Rival:\t%s (%d)\n", combined.Rival, combined.RivalKills)
	}
	if combined.Nemesis != "" {
		fmt.Fprintf(w, "Nemesis:\t%s (%d)\n", combined.Nemesis, combined.NemesisDeaths)
	}
	w.Flush()
}

// cmdLeaderboard prints the guild leaderboard from the local database.
func cmdLeaderboard(args []string) {
	fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	by := fs.String("by", "kills", "ranking category (kills or kdr)")
	top := fs.Int("top", 20, "number of entries")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: killfeed leaderboard <guild-id> [--by kdr] [--top N]")
		os.Exit(1)
	}
	guildID := rest[0]

	store := openStore(*configPath)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := store.Leaderboard(ctx, guildID, *by, *top)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPLAYER\tKILLS\tDEATHS\tKDR")
	fmt.Fprintln(w, "----\t------\t-----\t------\t---")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.2f\n", e.Rank, e.Character, e.Kills, e.Deaths, e.KDR)
	}
	w.Flush()
}

// cmdToken mints a JWT for the HTTP API using the configured secret.
func cmdToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	admin := fs.Bool("admin", false, "grant admin access")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: killfeed token <name> [--admin]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: auth.jwt_secret is not configured")
		os.Exit(1)
	}

	token, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration).GenerateToken(rest[0], *admin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
