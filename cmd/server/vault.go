package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/daybook/internal/bootstrap"
	"github.com/daybook/internal/service"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newVaultCmd() *cobra.Command {
	vault := &cobra.Command{
		Use:   "vault",
		Short: "Inspect or initialize the encrypted vault",
	}

	vault.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether the vault has been initialized",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVaultStatus(cmd, bootstrap.BuildContainer())
		},
	})

	vault.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Initialize the vault with a master key read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVaultInit(cmd, bootstrap.BuildContainer())
		},
	})

	return vault
}

func runVaultStatus(cmd *cobra.Command, inj *do.Injector) error {
	defer inj.Shutdown() //nolint:errcheck

	vault, err := do.Invoke[*service.VaultService](inj)
	if err != nil {
		return err
	}
	initialized, err := vault.Initialized()
	if err != nil {
		return err
	}

	if initialized {
		fmt.Fprintln(cmd.OutOrStdout(), "vault: initialized")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "vault: not initialized")
	}
	return nil
}

func runVaultInit(cmd *cobra.Command, inj *do.Injector) error {
	defer inj.Shutdown() //nolint:errcheck

	passphrase, err := readPassphrase(cmd.InOrStdin())
	if err != nil {
		return err
	}

	vault, err := do.Invoke[*service.VaultService](inj)
	if err != nil {
		return err
	}
	if err := vault.Initialize(passphrase); err != nil {
		if errors.Is(err, service.ErrVaultExists) {
			return fmt.Errorf("vault already initialized")
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "vault: initialized")
	return nil
}

// readPassphrase 读取第一行作为主密码，去掉行尾换行
func readPassphrase(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read master key: %w", err)
	}
	passphrase := strings.TrimRight(line, "\r\n")
	if passphrase == "" {
		return "", errors.New("master key must not be empty")
	}
	return passphrase, nil
}
