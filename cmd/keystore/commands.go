package main

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	errUsage    = errors.New("usage: keystore [flags] get <name> | put <name> < content | list | version")
	errNotFound = errors.New("not found")
)

// store is the part of *keystore.KeyStore the commands use. The kind comes
// from the -kind flag, so commands always pass an empty kind.
type store interface {
	Get(ctx context.Context, kind, name string) ([]byte, bool, error)
	Put(ctx context.Context, kind, name string, content []byte) error
	List(ctx context.Context, kind string) ([]string, error)
}

// run executes one command. Secret material goes to stdout only.
func run(ctx context.Context, ks store, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "get":
		if len(rest) != 1 {
			return errUsage
		}
		content, ok, err := ks.Get(ctx, "", rest[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: %w", rest[0], errNotFound)
		}
		_, err = stdout.Write(content)
		return err

	case "put":
		if len(rest) != 1 {
			return errUsage
		}
		content, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read content: %w", err)
		}
		return ks.Put(ctx, "", rest[0], content)

	case "list":
		if len(rest) != 0 {
			return errUsage
		}
		names, err := ks.List(ctx, "")
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, err = fmt.Fprintln(stdout, name); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}
