package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		// The parser has already printed err to stderr.
		os.Exit(1)
	}
}

func run(args []string) error {
	parser := newParser(newCLI(os.Stdout))
	_, err := parser.ParseArgs(args)
	return err
}
