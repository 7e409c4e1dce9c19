package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/concave-dev/prefq/cmd/prefqctl/config"
	"github.com/concave-dev/prefq/cmd/prefqctl/display"
	"github.com/concave-dev/prefq/cmd/prefqctl/utils"
	"github.com/concave-dev/prefq/internal/auth"
	"github.com/concave-dev/prefq/internal/logging"
	"github.com/spf13/cobra"
)

// minKeyBits keeps OAEP with SHA-256 usable for realistic passwords.
const minKeyBits = 2048

// HandleKeygen handles the keygen command. It refuses to overwrite an
// existing key pair.
func HandleKeygen(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	if config.Keygen.Bits < minKeyBits {
		return fmt.Errorf("--bits must be at least %d, got: %d", minKeyBits, config.Keygen.Bits)
	}
	if err := os.MkdirAll(config.Keygen.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create key directory %s: %w", config.Keygen.Dir, err)
	}

	for _, name := range []string{"id_rsa", "id_rsa.pub"} {
		path := filepath.Join(config.Keygen.Dir, name)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat %s: %w", path, err)
		}
	}

	pub, priv, err := auth.WriteKeyPair(config.Keygen.Dir, config.Keygen.Bits)
	if err != nil {
		return err
	}

	logging.Success("Generated %d-bit key pair in %s", config.Keygen.Bits, config.Keygen.Dir)
	return display.DisplayKeyPair(stdout, pub, priv)
}
