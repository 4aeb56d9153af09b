// Package secrets resolves the datastore password at startup.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"

	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

var ErrNotConfigured = errors.New("no datastore password source configured")

// Source yields the datastore password.
type Source interface {
	Password(ctx context.Context) (string, error)
}

// Static is a password given directly in configuration.
type Static string

func (s Static) Password(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", errx.WrapSecret(ErrNotConfigured)
	}
	return string(s), nil
}

// VersionAccessor is the part of the Secret Manager client used here.
type VersionAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// SecretManager reads the latest version of one secret.
type SecretManager struct {
	client    VersionAccessor
	projectID string
	name      string
}

func NewSecretManager(client VersionAccessor, projectID, name string) *SecretManager {
	return &SecretManager{client: client, projectID: projectID, name: name}
}

// NewSecretManagerClient dials Secret Manager with application default credentials.
func NewSecretManagerClient(ctx context.Context) (*secretmanager.Client, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, errx.WrapSecret(fmt.Errorf("create secret manager client: %w", err))
	}
	return client, nil
}

func (s *SecretManager) resourceName() string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, s.name)
}

func (s *SecretManager) Password(ctx context.Context) (string, error) {
	if s.projectID == "" || s.name == "" {
		return "", errx.WrapSecret(ErrNotConfigured)
	}
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.resourceName(),
	})
	if err != nil {
		return "", errx.WrapSecret(fmt.Errorf("access %s: %w", s.resourceName(), err))
	}
	if resp.GetPayload() == nil {
		return "", errx.WrapSecret(fmt.Errorf("secret %s has no payload", s.name))
	}

	password := strings.TrimSpace(string(resp.GetPayload().GetData()))
	if password == "" {
		return "", errx.WrapSecret(fmt.Errorf("secret %s is empty", s.name))
	}
	logx.Info().Str("component", "secrets").Str("secret", s.name).Msg("datastore password retrieved")
	return password, nil
}
