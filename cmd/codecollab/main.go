package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Prannn182/CodeCollab-Frontend/internal/config"
	"github.com/Prannn182/CodeCollab-Frontend/internal/discovery"
	"github.com/Prannn182/CodeCollab-Frontend/internal/version"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/Prannn182/CodeCollab-Frontend/sdk"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
			os.Exit(2)
		}
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	args, err := parseFlags(cfg, os.Args[1:])
	if err != nil {
		return err
	}
	if args == nil {
		return nil
	}
	logger.SetLevel(cfg.EffectiveLogLevel())

	if len(args) == 0 {
		return errUsage
	}

	var room, username, language string
	switch args[0] {
	case "help", "--help", "-h":
		printUsage()
		return nil
	case "version", "--version", "-v":
		fmt.Println("codecollab " + version.RichVersion())
		return nil
	case "join":
		if len(args) < 3 {
			return errUsage
		}
		room, username = args[1], args[2]
		if len(args) > 3 {
			language = args[3]
		}
	case "new":
		if len(args) < 2 {
			return errUsage
		}
		room, username = sdk.GenerateRoomID(), args[1]
		if len(args) > 2 {
			language = args[2]
		}
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Discover() {
		srv, err := discovery.Discover(ctx, cfg.MDNSService)
		if err != nil {
			return fmt.Errorf("failed to discover server: %w", err)
		}
		logger.Infof("Discovered %s at %s", srv.Instance, srv.URL)
		cfg.ServerURL = srv.URL
	}
	logger.Debugf("Config: ServerURL=%s, Transport=%s", cfg.ServerURL, cfg.Transport)

	client, err := sdk.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	fmt.Printf("Joining room %s as %s...\n", room, username)
	if err := client.JoinRoom(ctx, room, username, language); err != nil {
		return err
	}

	r := newREPL(client, os.Stdout)
	r.roomID = room
	unsubscribe := client.Subscribe(r.render)
	defer unsubscribe()
	r.render(client.View())

	return r.run(ctx, os.Stdin)
}

func parseFlags(cfg *config.Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("codecollab", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	server := fs.String("server", "", "Room server URL, or \"mdns\" to discover one")
	transport := fs.String("transport", "", "Wire transport (socketio|websocket)")
	logLevel := fs.String("log-level", "", "Log level (trace|debug|info|warn|error)")
	attempts := fs.Int("reconnect-attempts", -1, "Automatic reconnect attempts")
	debug := fs.Bool("debug", false, "Enable debug logging")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *showHelp {
		printUsage()
		return nil, nil
	}

	if *server != "" {
		cfg.ServerURL = *server
	}
	if *transport != "" {
		cfg.Transport = config.Transport(*transport)
	}
	if *logLevel != "" {
		level, err := logger.ParseLevel(*logLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
		cfg.LogLevel = level
	}
	if *attempts >= 0 {
		cfg.ReconnectAttempts = *attempts
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if rest == nil {
		rest = []string{}
	}
	return rest, nil
}

func printUsage() {
	fmt.Println(`codecollab - terminal client for collaborative code rooms

Usage:
  codecollab join <room> <username> [language]  Join an existing room
  codecollab new <username> [language]          Create a room with a random id
  codecollab help                               Show this help message
  codecollab version                            Show version information

Languages: javascript (default), python, html, css, java, cpp

Environment Variables:
  CODECOLLAB_SERVER_URL          Server URL, or "mdns" (default: http://localhost:5001)
  CODECOLLAB_TRANSPORT           socketio or websocket (default: socketio)
  CODECOLLAB_RECONNECT_ATTEMPTS  Automatic reconnect attempts (default: 5)
  CODECOLLAB_RECONNECT_DELAY_MS  Delay between attempts (default: 1000)
  CODECOLLAB_CONNECT_TIMEOUT_MS  Dial timeout (default: 20000)
  CODECOLLAB_JOIN_TIMEOUT_MS     Join timeout (default: 10000)
  CODECOLLAB_MDNS_SERVICE        mDNS service (default: _codecollab._tcp)
  CODECOLLAB_LOG_LEVEL           Log level (default: info)
  DEBUG                          Enable debug logging (true/1)

Flags:
  --server              Server URL
  --transport           socketio or websocket
  --log-level           Log level
  --reconnect-attempts  Automatic reconnect attempts
  --debug               Enable debug logging

Examples:
  # Start a new room on a local server
  codecollab new alice

  # Join a room found on the local network over raw WebSocket
  codecollab --server mdns --transport websocket join k3x9q2ab bob python`)
}
