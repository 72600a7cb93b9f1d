package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// DefaultPath is the config file written by the wizard.
const DefaultPath = ".staticembed.yml"

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to staticembed! Let's configure this site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Content API.
	contentPrompt := promptui.Prompt{
		Label:    "Content API base URL",
		Default:  cfg.Content.BaseURL,
		Validate: validateAbsoluteURL,
	}
	baseURL, err := contentPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("content base url: %w", err)
	}
	cfg.Content.BaseURL = baseURL

	// 2. Error webhook.
	webhookPrompt := promptui.Prompt{
		Label:    "Error webhook URL (leave blank to disable)",
		Validate: validateOptionalURL,
	}
	webhookURL, err := webhookPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("webhook url: %w", err)
	}
	cfg.Webhook.URL = webhookURL

	// 3. Storage.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory for the SQLite database",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 4. Listener.
	portPrompt := promptui.Prompt{
		Label:    "Server port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 5. Auto regeneration.
	debouncePrompt := promptui.Select{
		Label: "Regenerate static content after a page save",
		Items: []string{"immediately", "after 30s of quiet", "after 5m of quiet"},
	}
	idx, _, err := debouncePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("regeneration mode: %w", err)
	}
	cfg.Generator.RegenDebounce = debounceChoices[idx]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateAbsoluteURL(s string) error {
	return requireURL("url", s)
}

func validateOptionalURL(s string) error {
	if s == "" {
		return nil
	}
	return requireURL("url", s)
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}
