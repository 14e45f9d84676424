// Command vaultctl is an interactive client for vaultd, in the spirit
// of ppriyankuu-godkv's Cobra-based kvcli but built over the raw
// client package instead of HTTP, since the server speaks a line
// protocol, not REST.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vaultd/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "vaultctl [address]",
		Short: "Interactive client for vaultd",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := addr
			if len(args) == 1 {
				target = args[0]
			}
			return repl(target, timeout)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:8080", "vaultd address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "connect timeout")

	cmd.AddCommand(setCmd(&addr, &timeout), getCmd(&addr, &timeout), deleteCmd(&addr, &timeout))
	return cmd
}

func setCmd(addr *string, timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value...>",
		Short: "Store a key-value pair",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Dial(*addr, *timeout)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Set(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
}

func getCmd(addr *string, timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Retrieve a value by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Dial(*addr, *timeout)
			if err != nil {
				return err
			}
			defer c.Close()
			v, ok, err := c.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("NOT_FOUND")
				return nil
			}
			fmt.Println(v)
			return nil
		},
	}
}

func deleteCmd(addr *string, timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"del"},
		Short:   "Delete a key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Dial(*addr, *timeout)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
}

// repl runs an interactive session when vaultctl is invoked with no
// subcommand: one persistent connection, commands typed line by line.
func repl(addr string, timeout time.Duration) error {
	c, err := client.Dial(addr, timeout)
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Printf("connected to %s. commands: set <k> <v>, get <k>, delete <k>, quit\n", addr)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 3)
		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return nil
		case "set":
			if len(fields) < 3 {
				fmt.Println("usage: set <key> <value>")
				continue
			}
			if err := c.Set(fields[1], fields[2]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("OK")
		case "get":
			if len(fields) < 2 {
				fmt.Println("usage: get <key>")
				continue
			}
			v, ok, err := c.Get(fields[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if !ok {
				fmt.Println("NOT_FOUND")
				continue
			}
			fmt.Println(v)
		case "delete", "del":
			if len(fields) < 2 {
				fmt.Println("usage: delete <key>")
				continue
			}
			if err := c.Delete(fields[1]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("OK")
		case "help":
			fmt.Println("commands: set <k> <v>, get <k>, delete <k>, quit")
		default:
			fmt.Printf("unknown command %q, try help\n", fields[0])
		}
	}
}
