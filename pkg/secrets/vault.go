package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"companion-chat/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
)

// Common errors
var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrVaultDisabled  = errors.New("vault integration is disabled")
	ErrNoVaultToken   = errors.New("no vault token provided")
	ErrNoVaultAddress = errors.New("no vault address provided")
)

// VaultConfig holds configuration for the Vault client
type VaultConfig struct {
	Address     string
	Token       string
	Namespace   string
	Timeout     time.Duration
	MaxRetries  int
	SecretsPath string
	Enabled     bool
}

// Manager resolves secrets from HashiCorp Vault with an environment-variable
// fallback. API keys (LLM, image inference) and the billing webhook secret
// are read through it so deployments without Vault still work.
type Manager struct {
	client   *vault.Client
	config   VaultConfig
	cache    map[string]string
	mu       sync.RWMutex
	log      *logger.Logger
	cacheTTL time.Duration
}

// NewManager creates a new secrets manager from environment configuration
func NewManager(log *logger.Logger) (*Manager, error) {
	config := VaultConfig{
		Address:     os.Getenv("VAULT_ADDR"),
		Token:       os.Getenv("VAULT_TOKEN"),
		Namespace:   os.Getenv("VAULT_NAMESPACE"),
		SecretsPath: os.Getenv("VAULT_SECRETS_PATH"),
		Enabled:     os.Getenv("VAULT_ENABLED") == "true",
		Timeout:     10 * time.Second,
		MaxRetries:  3,
	}

	m := &Manager{
		config:   config,
		cache:    make(map[string]string),
		log:      log,
		cacheTTL: 5 * time.Minute,
	}

	if !config.Enabled {
		log.Info("vault integration disabled, using environment variables for secrets")
		return m, nil
	}

	if config.Address == "" {
		return nil, ErrNoVaultAddress
	}
	if config.Token == "" {
		return nil, ErrNoVaultToken
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = config.Address
	vaultConfig.Timeout = config.Timeout
	vaultConfig.MaxRetries = config.MaxRetries

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(config.Token)
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	m.client = client
	return m, nil
}

// Get resolves a secret by key: Vault when enabled, environment otherwise.
func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	if !m.config.Enabled || m.client == nil {
		if value := os.Getenv(key); value != "" {
			return value, nil
		}
		return "", ErrSecretNotFound
	}

	m.mu.RLock()
	if value, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return value, nil
	}
	m.mu.RUnlock()

	path := m.config.SecretsPath
	if path == "" {
		path = "secret/data/companion-chat"
	}

	secret, err := m.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read vault secret: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}

	// KV v2 nests the payload under "data"
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		data = secret.Data
	}

	value, ok := data[key].(string)
	if !ok || value == "" {
		return "", ErrSecretNotFound
	}

	m.mu.Lock()
	m.cache[key] = value
	m.mu.Unlock()

	// Entries are only valid for the cache TTL
	go func() {
		time.Sleep(m.cacheTTL)
		m.mu.Lock()
		delete(m.cache, key)
		m.mu.Unlock()
	}()

	return value, nil
}

// GetOrDefault resolves a secret, falling back to a default value
func (m *Manager) GetOrDefault(ctx context.Context, key, fallback string) string {
	value, err := m.Get(ctx, key)
	if err != nil {
		return fallback
	}
	return value
}
