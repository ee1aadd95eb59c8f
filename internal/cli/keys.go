package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goMIXR/internal/core/address"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Key and address utilities",
}

var keysNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a secp256k1 key pair and its address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := address.GenerateKeyPair()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "address:     %s\n", kp.Address)
		fmt.Fprintf(out, "public key:  %s\n", hex.EncodeToString(kp.PublicKey))
		fmt.Fprintf(out, "private key: %s\n", hex.EncodeToString(kp.PrivateKey))
		return nil
	},
}

var keysAddressCmd = &cobra.Command{
	Use:   "address <public-key-hex>",
	Short: "Derive the address of a compressed public key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("invalid public key: %w", err)
		}
		addr, err := address.FromPublicKey(pub)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), addr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysNewCmd, keysAddressCmd)
}
