package ecr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/melih/dockship/internal/core/domain"
)

// STSAPI is the subset of the STS client used here.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, opts ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// ECRAPI is the subset of the ECR client used here.
type ECRAPI interface {
	GetAuthorizationToken(ctx context.Context, in *ecr.GetAuthorizationTokenInput, opts ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
}

// Clients builds per-region service clients. Returning an error wrapping
// domain.ErrCredentialsUnavailable signals that no credentials exist.
type Clients interface {
	STS(ctx context.Context, region string) (STSAPI, error)
	ECR(ctx context.Context, region string) (ECRAPI, error)
}

// Service implements ports.RegistryService against STS and ECR.
type Service struct {
	clients Clients
}

// NewService uses the default AWS credential chain.
func NewService() *Service {
	return &Service{clients: defaultClients{}}
}

// NewServiceWithClients is used by tests and by callers with their own
// credential wiring.
func NewServiceWithClients(c Clients) *Service {
	return &Service{clients: c}
}

// AccountID returns the caller's AWS account.
func (s *Service) AccountID(ctx context.Context, region string) (string, error) {
	client, err := s.clients.STS(ctx, region)
	if err != nil {
		return "", err
	}
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}

// Credentials returns a short-lived ECR login.
func (s *Service) Credentials(ctx context.Context, region string) (domain.Credentials, error) {
	client, err := s.clients.ECR(ctx, region)
	if err != nil {
		return domain.Credentials{}, err
	}
	out, err := client.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to get authorization token: %w", err)
	}
	if len(out.AuthorizationData) == 0 {
		return domain.Credentials{}, fmt.Errorf("ecr returned no authorization data")
	}

	data := out.AuthorizationData[0]
	username, password, err := DecodeToken(aws.ToString(data.AuthorizationToken))
	if err != nil {
		return domain.Credentials{}, err
	}
	return domain.Credentials{
		Username: username,
		Password: password,
		Endpoint: aws.ToString(data.ProxyEndpoint),
	}, nil
}

// DecodeToken splits a base64 "user:password" ECR token.
func DecodeToken(token string) (string, string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode authorization token: %w", err)
	}
	user, pass, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", fmt.Errorf("malformed authorization token")
	}
	return user, pass, nil
}

type defaultClients struct{}

// load resolves config for region and makes sure the chain can actually
// produce credentials before any API call is attempted.
func (defaultClients) load(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	if cfg.Credentials == nil {
		return aws.Config{}, domain.ErrCredentialsUnavailable
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return aws.Config{}, fmt.Errorf("%w: %w", domain.ErrCredentialsUnavailable, err)
	}
	return cfg, nil
}

func (d defaultClients) STS(ctx context.Context, region string) (STSAPI, error) {
	cfg, err := d.load(ctx, region)
	if err != nil {
		return nil, err
	}
	return sts.NewFromConfig(cfg), nil
}

func (d defaultClients) ECR(ctx context.Context, region string) (ECRAPI, error) {
	cfg, err := d.load(ctx, region)
	if err != nil {
		return nil, err
	}
	return ecr.NewFromConfig(cfg), nil
}
