package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/dkzhang/stockchat/internal/config"
	"github.com/dkzhang/stockchat/internal/storage/sqlite"
)

// runInteractiveMode drives the login/register flow and the chat loop.
func runInteractiveMode(cfg *config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	printTitle()

	ctx := context.Background()

	username, err := authenticate(ctx, a)
	if err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		return err
	}

	displayName := username
	if profile, err := a.store.Profile(ctx, username); err == nil && profile != nil && profile.FullName != "" {
		displayName = profile.FullName
	}
	printSuccess(fmt.Sprintf("Logged in as %s", displayName))

	// replay previous conversation
	history, err := a.chat.History(ctx, username)
	if err == nil && len(history) > 0 {
		printDivider()
		for _, msg := range history {
			printMessage(msg)
		}
	}
	printDivider()

	sessionID := a.chat.NewSession()
	for {
		question, ok, err := PromptForQuestion()
		if err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}
		if !ok {
			return nil
		}

		answer := a.chat.Ask(ctx, username, sessionID, question)
		printMessage(sqlite.ChatMessage{Role: sqlite.RoleUser, Text: question})
		printMessage(sqlite.ChatMessage{Role: sqlite.RoleAssistant, Text: answer})
		printDivider()
	}
}

// authenticate loops until a login succeeds or a registration completes and
// the user logs in.
func authenticate(ctx context.Context, a *app) (string, error) {
	for {
		action, err := PromptForAction()
		if err != nil {
			return "", err
		}

		if action == "Register" {
			if err := register(ctx, a); err != nil {
				if errors.Is(err, terminal.InterruptErr) {
					return "", err
				}
				printError(err.Error())
			}
			continue
		}

		creds, err := PromptForLogin()
		if err != nil {
			return "", err
		}

		valid, err := a.store.VerifyLogin(ctx, creds.Username, creds.Password)
		if err != nil {
			return "", fmt.Errorf("verify login: %w", err)
		}
		if !valid {
			printError("Invalid username or password.")
			continue
		}
		return creds.Username, nil
	}
}

func register(ctx context.Context, a *app) error {
	reg, err := PromptForRegistration()
	if err != nil {
		return err
	}

	created, err := a.store.RegisterUser(ctx, reg.Username, reg.Email, reg.FullName, reg.Password)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	if !created {
		return fmt.Errorf("username already exists")
	}

	printSuccess("Registered – please log in.")
	return nil
}

// runAskCommand answers a single question without the interactive loop.
func runAskCommand(cfg *config.Config, username, question string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := a.chat.NewSession()
	answer := a.chat.Ask(context.Background(), username, sessionID, question)
	fmt.Println(answer)
	return nil
}

// runRegisterCommand registers an account from the terminal prompts.
func runRegisterCommand(cfg *config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return register(context.Background(), a)
}
