package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"github.com/raine/tcg-card-lister/config"
	"github.com/raine/tcg-card-lister/internal/tcgapi"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const geminiModelsURL = "https://generativelanguage.googleapis.com/v1beta/models"

func newSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "setup",
		Short:       "Write API keys and folders to the config file",
		Args:        cobra.NoArgs,
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractiveTerminal() {
				path, _ := config.FilePath()
				return fmt.Errorf("setup needs an interactive terminal; edit %s instead", path)
			}
			return runSetupWizard()
		},
	}
}

// isInteractiveTerminal returns true if both stdin and stdout are TTYs.
func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runSetupWizard collects configuration interactively and merges it into
// the config file.
func runSetupWizard() error {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("🃏 TCG Card Lister - Setup"))
	fmt.Println()

	geminiKey := os.Getenv(config.EnvGeminiAPIKey)
	pokemonKey := os.Getenv(config.EnvPokemonTCGAPIKey)
	scansDir := os.Getenv(config.EnvScansDir)
	if scansDir == "" {
		scansDir = config.Default().ScansDir
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key").
				Description("Get yours at https://aistudio.google.com/apikey").
				Value(&geminiKey).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("API key is required")
					}
					return validateGeminiKey(s)
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Pokémon TCG API Key (optional)").
				Description("Raises the rate limit. Get one at https://dev.pokemontcg.io").
				Value(&pokemonKey).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					return validatePokemonKey(s)
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Scans folder").
				Description("Folder your scanner saves card images to").
				Value(&scansDir),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled.")
			return nil
		}
		return err
	}

	configPath, err := config.FilePath()
	if err != nil {
		return err
	}
	values := map[string]string{
		config.EnvGeminiAPIKey: geminiKey,
		config.EnvScansDir:     scansDir,
	}
	if pokemonKey != "" {
		values[config.EnvPokemonTCGAPIKey] = pokemonKey
	}
	if _, err := config.WriteEnvFile(configPath, values); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()

	return nil
}

func newValidationClient() *resty.Client {
	return resty.New().SetTimeout(10 * time.Second)
}

// validateGeminiKey validates a Gemini API key with the lightweight models
// list endpoint.
func validateGeminiKey(key string) error {
	var result struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	res, err := newValidationClient().R().
		SetQueryParam("key", key).
		SetError(&result).
		Get(geminiModelsURL)
	if err != nil {
		return errors.New("connection failed - check your internet")
	}

	switch res.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		if result.Error.Message != "" {
			return errors.New(result.Error.Message)
		}
		return fmt.Errorf("API key rejected (HTTP %d)", res.StatusCode())
	default:
		return fmt.Errorf("unexpected response (HTTP %d)", res.StatusCode())
	}
}

// validatePokemonKey checks a Pokémon TCG API key against the sets endpoint.
func validatePokemonKey(key string) error {
	res, err := newValidationClient().R().
		SetHeader("X-Api-Key", key).
		SetQueryParam("pageSize", "1").
		Get(tcgapi.PokemonAPIBaseURL + "/sets")
	if err != nil {
		return errors.New("connection failed - check your internet")
	}
	if res.IsError() {
		return fmt.Errorf("API key rejected (HTTP %d)", res.StatusCode())
	}
	return nil
}

// waitOnWindows pauses execution on Windows so users can see error messages
// before the console window closes.
func waitOnWindows() {
	if runtime.GOOS == "windows" {
		fmt.Println()
		fmt.Println("Press Enter to exit...")
		fmt.Scanln()
	}
}

// fatalWithWait logs a fatal error and waits on Windows before exiting.
func fatalWithWait(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
	waitOnWindows()
	os.Exit(1)
}
