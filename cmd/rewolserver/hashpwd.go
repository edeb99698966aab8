package main

import (
	"fmt"

	"github.com/rewol/rewol/internal/auth"
	"github.com/spf13/cobra"
)

var hashpwdCmd = &cobra.Command{
	Use:   "hashpwd <password>",
	Short: "Generate a password hash and salt",
	Long: `Derive a PBKDF2-HMAC-SHA256 hash (600000 iterations) and a fresh
random salt for the given password, printed ready to paste into a proxy or
server configuration file.`,
	Args: cobra.ExactArgs(1),
	RunE: runHashpwd,
}

func runHashpwd(cmd *cobra.Command, args []string) error {
	hash, salt, err := auth.Generate(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("password: %q\n", hash)
	fmt.Printf("salt: %q\n", salt)
	return nil
}
