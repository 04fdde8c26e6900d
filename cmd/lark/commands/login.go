package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var appID, appSecret, token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store application credentials",
		Long: `Store the application credentials used by the long connection and,
optionally, an access token used by the API commands.

Values not given as flags are prompted for. The app secret is read
without echo when stdin is a terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := cmd.InOrStdin()
			in := bufio.NewReader(src)
			out := cmd.ErrOrStderr()

			var err error

			if appID == "" {
				appID, err = promptLine(in, out, "App ID: ")
				if err != nil {
					return err
				}
			}

			if appSecret == "" {
				appSecret, err = promptSecret(src, in, out, "App Secret: ")
				if err != nil {
					return err
				}
			}

			viper.Set(KeyAppID, appID)
			viper.Set(KeyAppSecret, appSecret)

			if token != "" {
				viper.Set(KeyToken, token)
			}

			if err := saveConfig(); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials for %s\n", appID)

			return nil
		},
	}

	cmd.Flags().StringVar(&appID, "app-id", "", "application ID")
	cmd.Flags().StringVar(&appSecret, "app-secret", "", "application secret")
	cmd.Flags().StringVar(&token, "access-token", "", "access token for API commands")

	return cmd
}

func promptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)

	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when src is a terminal.
func promptSecret(src io.Reader, in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	f, ok := src.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return promptLine(in, out, prompt)
	}

	fd := int(f.Fd())

	_, _ = fmt.Fprint(out, prompt)

	secret, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}
