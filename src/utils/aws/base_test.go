package aws_handler

import (
	"errors"
	"testing"

	"papertrading/src/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	secretsmanageriface.SecretsManagerAPI
	values map[string]string
}

func (f *fakeSecrets) GetSecretValue(input *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
	value, ok := f.values[aws.StringValue(input.SecretId)]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(value)}, nil
}

func TestApplySecrets(t *testing.T) {
	sm := NewSecretManager(&fakeSecrets{values: map[string]string{
		"prod/sql":     "s3cret",
		"prod/jwt":     "jwt-key",
		"prod/finnhub": "fh-key",
	}})

	t.Run("overrides configured entries", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Databases.SQL.Password = "from-file"
		cfg.Auth.JWTSecret = "from-file"
		cfg.Secrets.SQLPasswordID = "prod/sql"
		cfg.Secrets.JWTSecretID = "prod/jwt"

		require.NoError(t, applySecrets(cfg, sm))
		assert.Equal(t, "s3cret", cfg.Databases.SQL.Password)
		assert.Equal(t, "jwt-key", cfg.Auth.JWTSecret)
		assert.Empty(t, cfg.Quotes.Finnhub.APIKey)
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Secrets.FinnhubAPIKeyID = "prod/unknown"
		assert.Error(t, applySecrets(cfg, sm))
	})

	t.Run("no region skips Secrets Manager", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Secrets.JWTSecretID = "prod/jwt"
		require.NoError(t, ApplySecrets(cfg))
		assert.Empty(t, cfg.Auth.JWTSecret)
	})
}
