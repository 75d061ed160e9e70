package config

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretVersionName normalises a secret reference to a version resource name.
// "projects/p/secrets/s" resolves to the latest version; a name that already
// carries "/versions/" is used as is.
func SecretVersionName(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), "/")
	if strings.Contains(name, "/versions/") {
		return name
	}
	return name + "/versions/latest"
}

// ResolveSecret reads a secret payload from Google Cloud Secret Manager.
func ResolveSecret(ctx context.Context, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer client.Close()

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: SecretVersionName(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret: %w", err)
	}

	return strings.TrimSpace(string(result.Payload.Data)), nil
}
