// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command iedump loads an Infinity Engine game root and dumps its KEY
// catalog as JSON. It is a thin CLI shell around the decoding core; all
// parsing logic lives in the library packages.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/infinity-engine/ieformats/cifs"
	"github.com/infinity-engine/ieformats/internal/reader"
	"github.com/infinity-engine/ieformats/key"
)

var keyName string

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		log.Println("JSON parse error:", err)
		return string(buf)
	}
	return pretty.String()
}

func dumpKey(root string) error {
	fs, err := cifs.New(root)
	if err != nil {
		return fmt.Errorf("opening game root %s: %w", root, err)
	}

	path, err := fs.Resolve(keyName)
	if err != nil {
		return fmt.Errorf("locating %s under %s: %w", keyName, root, err)
	}

	ds := reader.NewFileDataSource(path)
	r, err := ds.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	kf, err := key.Parse(r, fs)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	out, err := json.Marshal(kf)
	if err != nil {
		return err
	}
	fmt.Println(prettyPrint(out))
	return nil
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "iedump",
		Short: "An Infinity Engine resource catalog dumper",
		Long:  "Loads a game installation root and dumps its KEY catalog as JSON",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("iedump version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump [game-root]",
		Short: "Dump the KEY catalog found under a game root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpKey(args[0])
		},
	}
	dumpCmd.Flags().StringVar(&keyName, "key", "chitin.key", "catalog filename to resolve under the game root")

	rootCmd.AddCommand(versionCmd, dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
