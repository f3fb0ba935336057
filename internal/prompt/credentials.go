// Package prompt collects credentials and settings from the user.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/gemaudit/internal/cli"
	"github.com/theirongolddev/gemaudit/internal/config"
)

var (
	// ErrNoAPIKey indicates no key was configured or entered.
	ErrNoAPIKey = errors.New("no Gemini API key (set GEMINI_API_KEY, run `gemaudit setup`, or enter one when prompted)")
	// ErrAborted indicates the user cancelled the form.
	ErrAborted = errors.New("credential entry cancelled")
)

// Credentials are the key and model used for one analysis.
type Credentials struct {
	APIKey string
	Model  string
}

// Prompter asks for credentials. The stored key and model prefill the form;
// a blank key entry keeps the stored one.
type Prompter struct {
	Config      config.ServiceConfig
	Model       string // --model override; skips the model question
	Interactive bool

	// run executes a form; swapped in tests.
	run func(*huh.Form) error
}

// Credentials resolves the key and model, prompting when interactive.
func (p *Prompter) Credentials() (Credentials, error) {
	creds := Credentials{
		APIKey: config.APIKey(p.Config),
		Model:  p.Model,
	}
	if creds.Model == "" {
		creds.Model = config.Model(p.Config)
	}

	if p.Interactive {
		entered, model, err := p.ask(creds)
		if err != nil {
			return Credentials{}, err
		}
		if entered != "" {
			creds.APIKey = entered
		}
		creds.Model = model
	}

	creds.APIKey = strings.TrimSpace(creds.APIKey)
	if creds.APIKey == "" {
		return Credentials{}, ErrNoAPIKey
	}
	return creds, nil
}

func (p *Prompter) ask(current Credentials) (string, string, error) {
	var apiKey string
	model := current.Model

	keyDesc := "Get one at aistudio.google.com/app/apikey"
	if current.APIKey != "" {
		keyDesc = fmt.Sprintf("Current: %s (leave blank to keep)", cli.MaskAPIKey(current.APIKey))
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Gemini API key").
			Description(keyDesc).
			EchoMode(huh.EchoModePassword).
			Value(&apiKey),
	}
	if p.Model == "" {
		fields = append(fields, ModelSelect(&model))
	}

	run := p.run
	if run == nil {
		run = func(f *huh.Form) error { return f.Run() }
	}
	if err := run(huh.NewForm(huh.NewGroup(fields...))); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", "", ErrAborted
		}
		return "", "", fmt.Errorf("credential form: %w", err)
	}
	return strings.TrimSpace(apiKey), model, nil
}

// ModelSelect builds a select over the known models, with their prices.
// A current value outside the table is kept as an extra option.
func ModelSelect(model *string) *huh.Select[string] {
	var opts []huh.Option[string]
	known := false
	for _, m := range config.KnownModels() {
		label := fmt.Sprintf("%s  %s/1K tokens  %s", m.Model, cli.FormatPrice(m.PricePerKToken), m.Description)
		opts = append(opts, huh.NewOption(label, m.Model))
		if m.Model == *model {
			known = true
		}
	}
	if !known && *model != "" {
		opts = append(opts, huh.NewOption(*model+"  (custom)", *model))
	}

	return huh.NewSelect[string]().
		Title("Model").
		Options(opts...).
		Value(model)
}
