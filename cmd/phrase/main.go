// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command phrase compiles grammars and converts messages into text and
// back.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const usageStr = `Usage: phrase <command> [OPTION]... [ARG]...
Convert messages into natural looking text and back.

  phrase compile [-v] [-f] [--xz] -o FILE DIR
                     compile the grammar in DIR into the library FILE
  phrase encode -l LIB [-z] [MESSAGE]...
                     convert each MESSAGE into text
  phrase decode -l LIB [-z] [TEXT]...
                     recover the message from each TEXT
  phrase dump -l LIB [--yaml]
                     print the compiled table of LIB
  phrase help        give this help

LIB is a library file or a directory containing the grammar file
entry.txt, which is compiled on the fly. Without MESSAGE or TEXT arguments
standard input is read.

  -f, --force       overwrite an existing library file
  -l, --lib=LIB     library or grammar directory
  -o, --out=FILE    library file to create
  -v, --verbose     report the compiler's progress
      --xz          use the xz format for the library file
  -y, --yaml        dump in YAML format
  -z, --compress    compress the message with DEFLATE before encoding
`

func usage(w io.Writer) {
	fmt.Fprint(w, usageStr)
}

// commands maps the command names to their implementations.
var commands = map[string]func(args []string, stdin io.Reader,
	stdout io.Writer) error{
	"compile": compileCmd,
	"encode":  encodeCmd,
	"decode":  decodeCmd,
	"dump":    dumpCmd,
}

func main() {
	cmdName := filepath.Base(os.Args[0])
	log.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	log.SetFlags(0)

	if len(os.Args) < 2 {
		log.Fatalf("for help, type %s help", cmdName)
	}
	switch os.Args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
		os.Exit(0)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		log.Fatalf("command %q not supported", os.Args[1])
	}
	if err := cmd(os.Args[2:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
