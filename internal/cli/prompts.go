package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// LoginCredentials holds the answers from the login prompt.
type LoginCredentials struct {
	Username string
	Password string
}

// Registration holds the answers from the registration prompt.
type Registration struct {
	Username string
	Email    string
	FullName string
	Password string
}

// PromptForAction asks whether to log in or register.
func PromptForAction() (string, error) {
	var action string
	prompt := &survey.Select{
		Message: "Account:",
		Options: []string{"Login", "Register"},
		Default: "Login",
	}
	if err := survey.AskOne(prompt, &action); err != nil {
		return "", err
	}
	return action, nil
}

// PromptForLogin collects username and password.
func PromptForLogin() (*LoginCredentials, error) {
	creds := &LoginCredentials{}

	qs := []*survey.Question{
		{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.Required,
		},
		{
			Name:     "password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.Required,
		},
	}
	if err := survey.Ask(qs, creds); err != nil {
		return nil, err
	}

	creds.Username = strings.TrimSpace(creds.Username)
	return creds, nil
}

// PromptForRegistration collects the new-account fields and verifies the
// password confirmation before anything touches the credential store.
func PromptForRegistration() (*Registration, error) {
	reg := &Registration{}

	qs := []*survey.Question{
		{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.Required,
		},
		{
			Name:     "email",
			Prompt:   &survey.Input{Message: "Email:"},
			Validate: survey.Required,
		},
		{
			Name:     "fullname",
			Prompt:   &survey.Input{Message: "Full name:"},
			Validate: survey.Required,
		},
	}
	if err := survey.Ask(qs, reg); err != nil {
		return nil, err
	}

	var password, confirm string
	if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}
	if err := survey.AskOne(&survey.Password{Message: "Confirm password:"}, &confirm, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, fmt.Errorf("passwords don't match")
	}

	reg.Username = strings.TrimSpace(reg.Username)
	reg.Password = password
	return reg, nil
}

// PromptForQuestion reads the next chat question. An empty answer or
// "exit"/"quit" ends the session.
func PromptForQuestion() (string, bool, error) {
	var question string
	prompt := &survey.Input{
		Message: "Your question:",
		Help:    `e.g. "What's the outlook for AAPL earnings?" (empty or "exit" to quit)`,
	}
	if err := survey.AskOne(prompt, &question); err != nil {
		return "", false, err
	}

	question = strings.TrimSpace(question)
	switch strings.ToLower(question) {
	case "", "exit", "quit":
		return "", false, nil
	}
	return question, true, nil
}
