package commands

import (
	"github.com/spf13/cobra"
)

// Keygen command
var keygenCmd = &cobra.Command{
	Use:   "keygen [flags]",
	Short: "Generate an RSA key pair for the shared-secret handshake",
	Long: `Generate an OpenSSH RSA key pair for the prefq handshake.

The server and the producer both need both files (--sshpub, --sshpriv). The
producer seals the secret with the public key and checks the server's
acknowledgement with the private key.
Existing files are never overwritten.`,
	Example: `  prefqctl keygen --dir=~/.prefq`,
	Args:    cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetKeygenCommand returns the keygen command for flag and handler setup
func GetKeygenCommand() *cobra.Command {
	return keygenCmd
}
