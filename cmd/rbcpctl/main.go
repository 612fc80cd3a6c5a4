/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Command rbcpctl is the client-side driver: it issues RBCP
// register reads/writes, or relays arbitrary lines to a command
// console, against a running pdev/daqhost instance.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/rbcp"
	"github.com/BeeBeansTechnologies/sitcpy/rbcpserver"
	"github.com/BeeBeansTechnologies/sitcpy/session"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var host string
	var rbcpPort int
	var timeout time.Duration

	root := &cobra.Command{
		Use:   "rbcpctl",
		Short: "Drive an RBCP register server or command console.",
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&host, "host", "a", "127.0.0.1", "target host")
	flags.IntVarP(&rbcpPort, "rbcp-port", "p", rbcpserver.DefaultPort, "RBCP UDP port")
	flags.DurationVar(&timeout, "timeout", rbcp.DefaultTimeout, "reply timeout")

	root.AddCommand(newReadCmd(&host, &rbcpPort, &timeout))
	root.AddCommand(newWriteCmd(&host, &rbcpPort, &timeout))
	root.AddCommand(newCommandCmd(&host))
	return root
}

func newReadCmd(host *string, rbcpPort *int, timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "read <address-hex> <length>",
		Short: "Read length bytes of register data starting at address-hex.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			address, err := strconv.ParseUint(args[0], 16, 32)
			if err != nil {
				return fmt.Errorf("rbcpctl: bad address %q: %w", args[0], err)
			}
			length, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("rbcpctl: bad length %q: %w", args[1], err)
			}

			c, err := rbcp.Dial(fmt.Sprintf("%s:%d", *host, *rbcpPort))
			if err != nil {
				return err
			}
			defer c.Close()
			c.SetTimeout(*timeout)

			ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
			defer cancel()
			data, err := c.Read(ctx, uint32(address), length)
			if err != nil {
				return err
			}
			fmt.Println(formatHexRow(data))
			return nil
		},
	}
}

func newWriteCmd(host *string, rbcpPort *int, timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "write <address-hex> <byte-hex> [byte-hex ...]",
		Short: "Write one or more hex-encoded bytes starting at address-hex.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			address, err := strconv.ParseUint(args[0], 16, 32)
			if err != nil {
				return fmt.Errorf("rbcpctl: bad address %q: %w", args[0], err)
			}
			data := make([]byte, 0, len(args)-1)
			for _, tok := range args[1:] {
				b, err := strconv.ParseUint(tok, 16, 8)
				if err != nil {
					return fmt.Errorf("rbcpctl: bad byte %q: %w", tok, err)
				}
				data = append(data, byte(b))
			}

			c, err := rbcp.Dial(fmt.Sprintf("%s:%d", *host, *rbcpPort))
			if err != nil {
				return err
			}
			defer c.Close()
			c.SetTimeout(*timeout)

			ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
			defer cancel()
			echoed, err := c.Write(ctx, uint32(address), data)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes: %s\n", len(echoed), formatHexRow(echoed))
			return nil
		},
	}
}

func newCommandCmd(host *string) *cobra.Command {
	var port int
	var prompt string

	cmd := &cobra.Command{
		Use:   "cmd <line> [line ...]",
		Short: "Send one or more command lines to a command console and print the replies.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			client, err := session.DialCommandClient(fmt.Sprintf("%s:%d", *host, port), prompt)
			if err != nil {
				return err
			}
			defer client.Close()

			for _, line := range args {
				reply, err := client.SendCommand(line, false)
				if err != nil {
					return err
				}
				fmt.Println(strings.TrimRight(reply, "\r\n"))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&port, "port", "P", 9090, "command console port")
	flags.StringVar(&prompt, "prompt", "pdev$ ", "expected prompt string")
	return cmd
}

func formatHexRow(data []byte) string {
	row := make([]string, len(data))
	for i, b := range data {
		row[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(row, " ")
}
