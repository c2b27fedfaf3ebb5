package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/filetrail/config"
	"github.com/sagarc03/filetrail/keybackend"
)

var errCancelled = errors.New("cancelled")

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file interactively",
	Long: `Prompt for the settings that have no default and write them, together
with the defaults, to a config file (default: ./config.yaml).

You will be prompted for:
  - Database type and connection string
  - Object storage type, bucket and endpoint
  - OIDC issuer, audience and JWKS URL

The JWKS URL is fetched once before saving.`,
	Args: cobra.MaximumNArgs(1),
	// config files may not exist yet, so skip loading them
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(&config.Config{Log: config.LogConfig{Level: "info"}})
		return nil
	},
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "config.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		if !confirm(fmt.Sprintf("%s already exists. Overwrite it", path)) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg, err := config.Default()
	if err != nil {
		return err
	}

	if err := promptConfig(cfg); err != nil {
		if errors.Is(err, errCancelled) {
			fmt.Println("Cancelled.")
			return nil
		}
		return err
	}

	fmt.Print("Fetching JWKS... ")
	if err := checkJWKS(cmd.Context(), cfg.Auth.Keys.URL); err != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: %v\n", err)
		if !confirm("Save config anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	if err := writeConfigFile(path, cfg); err != nil {
		return err
	}

	slog.Info("config written", "path", path)
	return nil
}

func promptConfig(cfg *config.Config) error {
	var err error

	if cfg.Database.Type, err = selectOne("Database type", []string{"postgres", "sqlite"}); err != nil {
		return err
	}
	dsnLabel := "Postgres URL"
	if cfg.Database.Type == "sqlite" {
		dsnLabel = "SQLite file"
	}
	if cfg.Database.DSN, err = ask(dsnLabel, "", required("connection string")); err != nil {
		return err
	}

	if cfg.Storage.Type, err = selectOne("Object storage", []string{"s3", "minio"}); err != nil {
		return err
	}
	if cfg.Storage.Bucket, err = ask("Bucket", "", required("bucket")); err != nil {
		return err
	}
	if cfg.Storage.Region, err = ask("Region", cfg.Storage.Region, nil); err != nil {
		return err
	}
	if cfg.Storage.Type == "minio" {
		if cfg.Storage.Endpoint, err = ask("Endpoint URL", "http://localhost:9000", httpURL); err != nil {
			return err
		}
		if cfg.Storage.AccessKey, err = ask("Access Key", "", required("access key")); err != nil {
			return err
		}
		if cfg.Storage.SecretKey, err = askSecret("Secret Key"); err != nil {
			return err
		}
	}

	if cfg.Auth.OIDC.Issuer, err = ask("OIDC issuer", "", httpURL); err != nil {
		return err
	}
	if cfg.Auth.OIDC.Audience, err = ask("OIDC audience", "", required("audience")); err != nil {
		return err
	}
	if cfg.Auth.Keys.URL, err = ask("JWKS URL", jwksURLFor(cfg.Auth.OIDC.Issuer), httpURL); err != nil {
		return err
	}

	return nil
}

// jwksURLFor guesses the JWKS location most identity providers publish.
func jwksURLFor(issuer string) string {
	u, err := url.Parse(issuer)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.JoinPath(".well-known", "jwks.json").String()
}

func checkJWKS(ctx context.Context, jwksURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ks, err := keybackend.NewRemoteKeySet(ctx, jwksURL, keybackend.RemoteOptions{})
	if err != nil {
		return err
	}
	return ks.Refresh(ctx)
}

// writeConfigFile writes cfg as YAML with owner-only permissions, since it
// may hold storage credentials.
func writeConfigFile(path string, cfg *config.Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func required(what string) promptui.ValidateFunc {
	return func(input string) error {
		if input == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func httpURL(input string) error {
	if input == "" {
		return errors.New("URL is required")
	}
	u, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{Label: label, Default: def, Validate: validate}
	v, err := p.Run()
	return v, promptErr(err)
}

func askSecret(label string) (string, error) {
	p := promptui.Prompt{Label: label, Mask: '*', Validate: required("secret")}
	v, err := p.Run()
	return v, promptErr(err)
}

func selectOne(label string, items []string) (string, error) {
	s := promptui.Select{Label: label, Items: items}
	_, v, err := s.Run()
	return v, promptErr(err)
}

func confirm(label string) bool {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	return err == nil
}

func promptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrEOF) {
		return errCancelled
	}
	return err
}
