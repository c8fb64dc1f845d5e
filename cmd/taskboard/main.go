package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
	appsync "github.com/nhle/taskboard/internal/sync"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the config file")
	setToken := flag.Bool("set-token", false, "store the API token in the system keyring and exit")
	clearToken := flag.Bool("clear-token", false, "remove the API token from the system keyring and exit")
	flag.Parse()

	if *setToken {
		if err := storeToken(); err != nil {
			fmt.Fprintf(os.Stderr, "storing token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Token stored.")
		return
	}
	if *clearToken {
		if err := credential.Delete(credential.TokenKey); err != nil {
			fmt.Fprintf(os.Stderr, "clearing token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Token cleared.")
		return
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Backend.BaseURL == "" {
		fmt.Fprintf(os.Stderr, "no backend configured; set backend.base_url in %s\n", *configPath)
		os.Exit(1)
	}

	token := resolveToken(cfg)
	adapter := api.NewAdapter(cfg.Backend.BaseURL, token)
	ctrl := board.NewController(adapter)
	refresher := appsync.New(ctrl, time.Duration(cfg.Board.RefreshIntervalSec)*time.Second)

	// The cache is optional; the app runs online-only without it.
	var boardCache *cache.Cache
	if c, err := cache.Open(cfg.CachePath); err == nil {
		boardCache = c
		defer c.Close()
	} else {
		fmt.Fprintf(os.Stderr, "warning: opening cache %s: %v\n", cfg.CachePath, err)
	}

	root := app.New(app.Deps{
		Config:     cfg,
		ConfigPath: *configPath,
		Adapter:    adapter,
		Cache:      boardCache,
		Ctrl:       ctrl,
		Refresher:  refresher,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "running program: %v\n", err)
		os.Exit(1)
	}
}

// resolveToken reads the bearer token from the configured environment
// variable, falling back to the system keyring.
func resolveToken(cfg *model.AppConfig) string {
	if cfg.Backend.TokenEnv != "" {
		if t := os.Getenv(cfg.Backend.TokenEnv); t != "" {
			return t
		}
	}
	t, err := credential.Get(credential.TokenKey)
	if err != nil {
		return ""
	}
	return t
}

// storeToken reads a token from stdin and saves it to the keyring.
func storeToken() error {
	fmt.Print("API token: ")
	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}
	return credential.Set(credential.TokenKey, token)
}
