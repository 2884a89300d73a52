package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/client/api"
)

type authClient struct {
	serverURL *string
}

func newAuthCmd(serverURL *string) *cobra.Command {
	a := &authClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "auth", Short: "Authentication commands"}
	cmd.AddCommand(&cobra.Command{Use: "register", Short: "Register new user", RunE: a.register})
	cmd.AddCommand(&cobra.Command{Use: "login", Short: "Login and store token", RunE: a.login})
	cmd.AddCommand(&cobra.Command{Use: "logout", Short: "Forget the stored token", RunE: a.logout})
	return cmd
}

func (a *authClient) register(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	username, err := promptLine(cmd, reader, "Username: ")
	if err != nil {
		return err
	}
	email, err := promptLine(cmd, reader, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	client := api.New(*a.serverURL, "")
	user, err := client.Register(cmd.Context(), username, email, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered as %s\n", user.Username)
	return nil
}

func (a *authClient) login(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	email, err := promptLine(cmd, reader, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	client := api.New(*a.serverURL, "")
	token, err := client.Login(cmd.Context(), email, string(password))
	if err != nil {
		return err
	}
	if err := saveToken(token); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
	return nil
}

func (a *authClient) logout(cmd *cobra.Command, args []string) error {
	if err := os.Remove(tokenPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func promptLine(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(cmd *cobra.Command, prompt string) ([]byte, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	return pass, err
}

func tokenPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".recipefinder_token")
}

func saveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// apiClient builds an authenticated client, failing early when no token
// is stored.
func apiClient(serverURL string) (*api.Client, error) {
	token, err := loadToken()
	if err != nil || token == "" {
		return nil, fmt.Errorf("no access token, please login")
	}
	return api.New(serverURL, token), nil
}
