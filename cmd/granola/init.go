package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/granola"
)

// Run executes the init command. It replaces stored credentials, which
// drops any cached access token.
func (c *InitCmd) Run(deps *Dependencies) error {
	creds := &granola.Credentials{
		RefreshToken:  strings.TrimSpace(c.RefreshToken),
		ClientID:      strings.TrimSpace(c.ClientID),
		ClientVersion: strings.TrimSpace(c.ClientVersion),
	}
	if err := creds.Validate(); err != nil {
		return fail(deps, err)
	}

	if err := deps.Credentials.SaveCredentials(deps.Ctx, creds); err != nil {
		return fail(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Saved credentials to %s\n", deps.CredentialsPath)
	fmt.Fprintln(deps.Stdout, "Run 'granola sync' to download your meetings.")
	return nil
}
