// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	keygenGroupID   string
	keygenOutputCSV string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a DAA key bundle for testing",
	Long: `keygen generates a secp256r1 key pair and emits it as a DAA key
bundle in the <group_id>,<server_public_key_hex>,<client_private_key_hex>
CSV format consumed by daa.ParseKeys. The server and client share the
same long-term key pair: the group's public key is what the client
verifies the server's signature against, and the matching private key
is what the client uses to sign its own ephemeral key.`,
	Example: `  xdaa-handshake keygen --group-id my-test-group`,
	RunE:    runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVar(&keygenGroupID, "group-id", "test-group", "DAA group identifier to embed in the bundle")
	keygenCmd.Flags().StringVarP(&keygenOutputCSV, "output", "o", "", "file to write the bundle to (default stdout)")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	publicHex := hex.EncodeToString(elliptic.Marshal(elliptic.P256(), priv.X, priv.Y))

	privateBytes := make([]byte, 32)
	priv.D.FillBytes(privateBytes)
	privateHex := hex.EncodeToString(privateBytes)

	bundle := fmt.Sprintf("%s,%s,%s\n", keygenGroupID, publicHex, privateHex)

	if keygenOutputCSV == "" {
		_, err = fmt.Fprint(os.Stdout, bundle)
		return err
	}
	return os.WriteFile(keygenOutputCSV, []byte(bundle), 0o600)
}
