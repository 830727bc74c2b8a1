package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Receiver holds the settings of the alarm-tone-receiver process.
type Receiver struct {
	// ServerAddress is the gRPC address senders use; its port is listened on.
	ServerAddress string `yaml:"server_addr"`
	// StorageDir is where delivered files and their index are kept.
	StorageDir string `yaml:"storage_dir"`
	// HTTPAddress enables the health, metrics and listing endpoints when set.
	HTTPAddress string `yaml:"http_addr,omitempty"`
}

const (
	// DefaultReceiverFilename is the default filename of the receiver settings.
	DefaultReceiverFilename = "alarm-tone-receiver.yaml"
	// DefaultServerAddress is used when no address is configured.
	DefaultServerAddress = "127.0.0.1:50051"
	// DefaultStorageDir is used when no storage directory is configured.
	DefaultStorageDir = "deliveries"
)

// DefaultReceiver returns the receiver settings used without a settings file.
func DefaultReceiver() *Receiver {
	return &Receiver{
		ServerAddress: DefaultServerAddress,
		StorageDir:    DefaultStorageDir,
	}
}

// LoadReceiver reads receiver settings from path and validates them.
func LoadReceiver(path string) (*Receiver, error) {
	if path == "" {
		path = DefaultReceiverFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := DefaultReceiver()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := ValidateReceiver(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateReceiver checks the addresses and fills in the storage directory.
func ValidateReceiver(cfg *Receiver) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, _, err := net.SplitHostPort(cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if cfg.HTTPAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.HTTPAddress); err != nil {
			return fmt.Errorf("invalid HTTP address: %w", err)
		}
	}

	// Set default storage directory if not specified
	if cfg.StorageDir == "" {
		cfg.StorageDir = DefaultStorageDir
	}

	return nil
}
