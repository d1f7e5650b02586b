// bankctl is a command line client for bankd. Each subcommand opens a
// connection, sends one request frame, prints the response fields one per
// line, and exits non-zero on a nok response.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/dkaiser/bankd/internal/protocol"
	"github.com/spf13/cobra"
)

const envServer = "BANKCTL_SERVER"

var serverAddr string

var rootCmd = &cobra.Command{
	Use:   "bankctl",
	Short: "command line client for bankd",
	Long: `bankctl sends ledger commands to a running bankd server.

The server address comes from --server or the BANKCTL_SERVER environment
variable and defaults to 127.0.0.1:5001.`,
	SilenceUsage: true,
}

func init() {
	defaultAddr := os.Getenv(envServer)
	if defaultAddr == "" {
		defaultAddr = "127.0.0.1:5001"
	}
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", defaultAddr,
		"bankd address <host:port>, you can set env "+envServer)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "accounts",
			Short: "list active account numbers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return request("1")
			},
		},
		&cobra.Command{
			Use:   "get <number>",
			Short: "show one account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return request("2", args[0])
			},
		},
		&cobra.Command{
			Use:   "create <owner>",
			Short: "create an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return request("3", args[0])
			},
		},
		&cobra.Command{
			Use:   "close <number>",
			Short: "close an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return request("4", args[0])
			},
		},
		&cobra.Command{
			Use:   "transfer <from> <to> <amount>",
			Short: "transfer between accounts",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return request("5", args[0], args[1], args[2])
			},
		},
		&cobra.Command{
			Use:   "deposit <number> <amount>",
			Short: "deposit into an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return request("6", args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "withdraw <number> <amount>",
			Short: "withdraw from an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return request("7", args[0], args[1])
			},
		},
	)
}

func request(fields ...string) error {
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", serverAddr, err)
	}
	defer conn.Close()

	if err := protocol.NewWriter(conn).WriteFrame(fields); err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	resp, err := protocol.NewReader(conn).ReadFrame()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	for _, field := range resp {
		fmt.Println(field)
	}
	if len(resp) > 0 && resp[0] == "nok" {
		return fmt.Errorf("request failed")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
