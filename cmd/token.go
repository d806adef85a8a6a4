package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/docriver/gateway/internal/token"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "token commands",
}

func init() {
	tokenCmd.AddCommand(issueTokenCommand())
}

// issueTokenCommand mints a capability token for testing and scripting.
func issueTokenCommand() *cobra.Command {
	var keyPath string
	var issuer string
	var subject string
	var audience string
	var validity time.Duration
	var resource string
	var permissions []string

	command := &cobra.Command{
		Use:   "issue",
		Short: "Issue a capability token",
		Run: func(cmd *cobra.Command, args []string) {
			if keyPath == "" || issuer == "" || subject == "" {
				color.Red("missing: --key, --issuer and --subject")
				return
			}

			perms := map[string]string{}
			for _, permission := range permissions {
				k, v, ok := strings.Cut(permission, ":")
				if !ok {
					color.Red("invalid permission %q, want key:value", permission)
					return
				}
				perms[k] = v
			}

			key, err := token.LoadPrivateKey(keyPath)
			if err != nil {
				color.Red("error loading private key: %v", err)
				return
			}

			signed, err := token.Issue(key, issuer, subject, audience, validity, resource, perms)
			if err != nil {
				color.Red("error issuing token: %v", err)
				return
			}
			fmt.Println(signed)
		},
	}

	command.Flags().StringVarP(&keyPath, "key", "k", "", "PEM private key of the issuer")
	command.Flags().StringVarP(&issuer, "issuer", "i", "", "issuer name, must match a trust store entry")
	command.Flags().StringVarP(&subject, "subject", "s", "", "principal the token acts as")
	command.Flags().StringVarP(&audience, "audience", "a", "docriver", "audience")
	command.Flags().DurationVarP(&validity, "validity", "v", 5*time.Minute, "validity window")
	command.Flags().StringVarP(&resource, "resource", "r", "", "resource claim")
	command.Flags().StringArrayVarP(&permissions, "permission", "p", nil, "permission claim as key:value, repeatable")

	return command
}
