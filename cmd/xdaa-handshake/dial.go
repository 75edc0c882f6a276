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
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xaptum/xdaa/config"
	"github.com/xaptum/xdaa/cryptobackend"
	"github.com/xaptum/xdaa/daa"
	"github.com/xaptum/xdaa/handshake"
	"github.com/xaptum/xdaa/internal/logger"
	"github.com/xaptum/xdaa/internal/metrics"
	"github.com/xaptum/xdaa/iobackend"
)

var (
	dialKeysCSV    string
	dialKeysFile   string
	dialTimeout    time.Duration
	dialConfigFile string
	dialSummary    bool
)

var dialCmd = &cobra.Command{
	Use:   "dial [address]",
	Short: "Run the client-side XDAA handshake against a TCP peer",
	Long: `dial opens a TCP connection to address, runs the client half of the
XDAA handshake using the given DAA key bundle, and prints the
negotiated shared secret as hex to stdout.`,
	Example: `  xdaa-handshake dial --keys test-group,04DD...,3FEA... localhost:9443`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDial,
}

func init() {
	rootCmd.AddCommand(dialCmd)
	dialCmd.Flags().StringVar(&dialKeysCSV, "keys", "", "DAA key bundle as <group_id>,<server_public_key_hex>,<client_private_key_hex>")
	dialCmd.Flags().StringVar(&dialKeysFile, "keys-file", "", "path to a file holding the DAA key bundle (overrides --keys)")
	dialCmd.Flags().DurationVar(&dialTimeout, "timeout", 10*time.Second, "connection timeout")
	dialCmd.Flags().StringVar(&dialConfigFile, "config", "", "path to a YAML/JSON config file (defaults applied when omitted)")
	dialCmd.Flags().BoolVar(&dialSummary, "summary", false, "print an in-process metrics summary to stderr after the handshake")
}

func runDial(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyLogLevel(cfg.Logging.Level)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Addr); err != nil {
				logger.Warn("metrics server stopped", logger.Error(err))
			}
		}()
	}

	csv, err := loadKeyBundle()
	if err != nil {
		return err
	}

	keys, err := daa.ParseKeys(csv)
	if err != nil {
		return fmt.Errorf("parse key bundle: %w", err)
	}

	address := args[0]
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}
	defer conn.Close()

	engine := handshake.New(keys)
	crypto := cryptobackend.New()
	transport := iobackend.NewWithDeadline(conn, cfg.Handshake.IODeadline)

	start := time.Now()
	secret, err := handshake.Run(engine, crypto, transport)
	metrics.GetGlobalCollector().RecordHandshake(err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("negotiate secret: %w", err)
	}

	fmt.Fprintln(os.Stdout, hex.EncodeToString(secret))

	if dialSummary {
		printSummary()
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if dialConfigFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(dialConfigFile)
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		logger.GetDefaultLogger().SetLevel(logger.DebugLevel)
	case "warn":
		logger.GetDefaultLogger().SetLevel(logger.WarnLevel)
	case "error":
		logger.GetDefaultLogger().SetLevel(logger.ErrorLevel)
	default:
		logger.GetDefaultLogger().SetLevel(logger.InfoLevel)
	}
}

func printSummary() {
	snap := metrics.GetGlobalCollector().GetSnapshot()
	fmt.Fprintf(os.Stderr, "handshakes: %d completed, %d failed (%.1f%% success), avg %.0fus\n",
		snap.HandshakesCompleted, snap.HandshakesFailed, snap.GetHandshakeSuccessRate(), snap.AvgHandshakeTime)
}

func loadKeyBundle() (string, error) {
	if dialKeysFile != "" {
		raw, err := os.ReadFile(dialKeysFile)
		if err != nil {
			return "", fmt.Errorf("read keys file: %w", err)
		}
		return strings.TrimRight(string(raw), "\r\n"), nil
	}
	if dialKeysCSV == "" {
		return "", fmt.Errorf("one of --keys or --keys-file is required")
	}
	return dialKeysCSV, nil
}
