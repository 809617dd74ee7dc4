package aws_handler

import (
	"fmt"

	"papertrading/src/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

type AWSHandler struct {
	SecretManager *SecretManager
}

func NewAWSHandler(region string) (*AWSHandler, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region)},
	)
	if err != nil {
		return nil, err
	}

	return &AWSHandler{
		SecretManager: NewSecretManager(secretsmanager.New(sess)),
	}, nil
}

// ApplySecrets overwrites credentials in cfg with the Secrets Manager entries named in
// the secrets section. Nothing is fetched when no region is configured.
func ApplySecrets(cfg *config.Config) error {
	if cfg.Secrets.AWSRegion == "" {
		return nil
	}
	handler, err := NewAWSHandler(cfg.Secrets.AWSRegion)
	if err != nil {
		return err
	}
	return applySecrets(cfg, handler.SecretManager)
}

func applySecrets(cfg *config.Config, sm *SecretManager) error {
	targets := []struct {
		id  string
		dst *string
	}{
		{cfg.Secrets.SQLPasswordID, &cfg.Databases.SQL.Password},
		{cfg.Secrets.FinnhubAPIKeyID, &cfg.Quotes.Finnhub.APIKey},
		{cfg.Secrets.JWTSecretID, &cfg.Auth.JWTSecret},
	}
	for _, t := range targets {
		if t.id == "" {
			continue
		}
		value, err := sm.GetSecretValue(t.id)
		if err != nil {
			return fmt.Errorf("failed to read secret %s: %w", t.id, err)
		}
		*t.dst = value
	}
	return nil
}
