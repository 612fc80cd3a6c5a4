/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package initcmd runs the "-s/--source" and "-x/--command" initial
// command lines a cmd/* binary accepts against a just-started command
// server, the same way the original cui_main drove startup commands
// through its own CUI client before handing off to the interactive
// prompt.
package initcmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/BeeBeansTechnologies/sitcpy/session"
)

// Run connects a CommandClient to addr, replays every command found in
// sourceFile (one per line, blank lines and "#" comments skipped) and
// then every ';'-separated command in inlineCommands, logging each
// reply to stdout. Both sourceFile and inlineCommands may be empty.
func Run(addr, prompt, sourceFile, inlineCommands string) error {
	if sourceFile == "" && inlineCommands == "" {
		return nil
	}

	client, err := session.DialCommandClient(addr, prompt)
	if err != nil {
		return fmt.Errorf("initcmd: connect to %s: %w", addr, err)
	}
	defer client.Close()

	var commands []string
	if sourceFile != "" {
		lines, err := readCommandFile(sourceFile)
		if err != nil {
			return err
		}
		commands = append(commands, lines...)
	}
	if inlineCommands != "" {
		for _, c := range strings.Split(inlineCommands, ";") {
			c = strings.TrimSpace(c)
			if c != "" {
				commands = append(commands, c)
			}
		}
	}

	for _, cmd := range commands {
		reply, err := client.SendCommand(cmd, false)
		if err != nil {
			return fmt.Errorf("initcmd: command %q: %w", cmd, err)
		}
		fmt.Println(reply)
	}
	return nil
}

func readCommandFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("initcmd: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("initcmd: scan %s: %w", path, err)
	}
	return lines, nil
}
