package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"endgame/internal/client/api"
	"endgame/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerAuthCommands() {
	r.Register(&Command{
		Name:        "register",
		ShortName:   "u",
		Description: "Register a new user",
		Usage:       "register [username] [email]",
		Handler:     registerHandler,
	})

	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Description: "Login with credentials",
		Usage:       "login [username|email]",
		Handler:     loginHandler,
	})

	r.Register(&Command{
		Name:        "logout",
		ShortName:   "o",
		Description: "End the server session and clear credentials",
		Usage:       "logout",
		Handler:     logoutHandler,
	})

	r.Register(&Command{
		Name:        "whoami",
		ShortName:   "i",
		Description: "Show current user",
		Usage:       "whoami",
		Handler:     whoamiHandler,
	})
}

var stdin = bufio.NewScanner(os.Stdin)

// ask returns args[i] when present, otherwise prompts for it
func ask(args []string, i int, prompt string) string {
	if i < len(args) {
		return args[i]
	}
	fmt.Print(display.Yellow + prompt + display.Reset)
	stdin.Scan()
	return strings.TrimSpace(stdin.Text())
}

func readPassword(prompt string) (string, error) {
	fmt.Print(display.Yellow + prompt + display.Reset)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func registerHandler(s Session, args []string) error {
	username := ask(args, 0, "Username: ")
	if username == "" {
		return fmt.Errorf("username required")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	email := ask(args, 1, "Email (optional): ")

	resp, err := s.GetClient().Register(username, password, email)
	if err != nil {
		return err
	}
	s.SignIn(resp.Token, resp.UserID, resp.Username)

	fmt.Printf("%sRegistered successfully%s\n", display.Green, display.Reset)
	printAuth(resp)
	return nil
}

func loginHandler(s Session, args []string) error {
	identifier := ask(args, 0, "Username or Email: ")
	if identifier == "" {
		return fmt.Errorf("username or email required")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Login(identifier, password)
	if err != nil {
		return err
	}
	s.SignIn(resp.Token, resp.UserID, resp.Username)

	fmt.Printf("%sLogged in successfully%s\n", display.Green, display.Reset)
	printAuth(resp)
	return nil
}

func printAuth(resp *api.AuthResponse) {
	fmt.Printf("User ID: %s\n", resp.UserID)
	fmt.Printf("Username: %s\n", resp.Username)
	fmt.Printf("Expires: %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
}

func logoutHandler(s Session, args []string) error {
	if s.GetAuthToken() == "" {
		fmt.Printf("%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	// an expired token is logged out already; clear locally either way
	err := s.GetClient().Logout()
	s.SignOut()

	var serr *api.StatusError
	if err != nil && !(errors.As(err, &serr) && serr.Status == 401) {
		return err
	}
	fmt.Printf("%sLogged out%s\n", display.Green, display.Reset)
	return nil
}

func whoamiHandler(s Session, args []string) error {
	if s.GetAuthToken() == "" {
		fmt.Printf("%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	user, err := s.GetClient().GetCurrentUser()
	if err != nil {
		return err
	}

	fmt.Printf("%sCurrent User:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  User ID:  %s\n", user.UserID)
	fmt.Printf("  Username: %s\n", user.Username)
	if user.Email != "" {
		fmt.Printf("  Email:    %s\n", user.Email)
	}
	fmt.Printf("  Created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
