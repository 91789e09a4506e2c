package config

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/dispatch-console/pkg/config/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockS3Loader struct {
	GetObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *MockS3Loader) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.GetObjectFunc(ctx, params, optFns...)
}

type MockDynamoLoader struct {
	GetItemFunc func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

func (m *MockDynamoLoader) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return m.GetItemFunc(ctx, params, optFns...)
}

const localYAML = `
version: "1.0"
console:
  name: "dispatch-console"
  runtime: "local"
  port: 8080
  timeout: "2s"
  logging:
    enabled: true
backend:
  type: "http"
  http:
    base_url: "${env.CONSOLE_TEST_BACKEND}"
    auth:
      token_url: "https://auth.local/oauth/token"
      client_id: "console"
      client_secret: "${ssm./console/secret}"
guards:
  - id: "max-delay"
    expr: "draft.defaultDelay <= 10000"
    msg: "delay too high"
graphql:
  enabled: true
`

func TestLoader_Load_Local(t *testing.T) {
	t.Setenv("CONSOLE_TEST_BACKEND", "http://localhost:8585")

	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(localYAML), 0o600))

	inj := injector.New().WithResolver("ssm", func(_ context.Context, key string) (string, error) {
		return "from-ssm" + key, nil
	})

	cfg, err := NewLoader().WithInjector(inj).Load(context.Background(), "file://"+path)
	require.NoError(t, err)

	assert.Equal(t, "dispatch-console", cfg.Console.Name)
	assert.Equal(t, "http://localhost:8585", cfg.Backend.HTTP.BaseURL)
	assert.Equal(t, "from-ssm/console/secret", cfg.Backend.HTTP.Auth.ClientSecret)
	assert.Equal(t, DefaultGraphQLRoute, cfg.GraphQL.Route)
	assert.Equal(t, "info", cfg.Console.Logging.Level)
	assert.Equal(t, "json", cfg.Console.Logging.Format)
	assert.Len(t, cfg.RuleGuards(), 1)
}

func TestLoader_Parse_Errors(t *testing.T) {
	loader := NewLoader().WithInjector(nil)

	t.Run("YAML malformado", func(t *testing.T) {
		_, err := loader.Parse(context.Background(), []byte("console: [unterminated"))
		assert.ErrorContains(t, err, "YAML malformado")
	})

	t.Run("Validação falha", func(t *testing.T) {
		_, err := loader.Parse(context.Background(), []byte(`version: "1.0"`))
		assert.ErrorContains(t, err, "validação da configuração falhou")
	})

	t.Run("Arquivo inexistente", func(t *testing.T) {
		_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoader_S3_Internal(t *testing.T) {
	mockYaml := `version: "1.0"`
	mockClient := &MockS3Loader{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "my-bucket", *params.Bucket)
			assert.Equal(t, "configs/console.yaml", *params.Key)
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(mockYaml))}, nil
		},
	}

	data, err := NewLoader().loadFromS3Internal(context.Background(), mockClient, "s3://my-bucket/configs/console.yaml")
	require.NoError(t, err)
	assert.Equal(t, mockYaml, string(data))
}

func TestLoader_Dynamo_Internal(t *testing.T) {
	t.Run("Query params customizados", func(t *testing.T) {
		mockClient := &MockDynamoLoader{
			GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
				assert.Equal(t, "ConfigTable", *params.TableName)
				key := params.Key["ConsoleName"].(*types.AttributeValueMemberS).Value
				assert.Equal(t, "my-console", key)
				return &dynamodb.GetItemOutput{
					Item: map[string]types.AttributeValue{
						"yaml_body": &types.AttributeValueMemberS{Value: `version: "1.0"`},
					},
				}, nil
			},
		}

		uri := "dynamodb://ConfigTable/my-console?pk=ConsoleName&col=yaml_body"
		data, err := NewLoader().loadFromDynamoDBInternal(context.Background(), mockClient, uri)
		require.NoError(t, err)
		assert.Equal(t, `version: "1.0"`, string(data))
	})

	t.Run("Item ausente", func(t *testing.T) {
		mockClient := &MockDynamoLoader{
			GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
				return &dynamodb.GetItemOutput{}, nil
			},
		}
		_, err := NewLoader().loadFromDynamoDBInternal(context.Background(), mockClient, "dynamodb://T/k")
		assert.ErrorContains(t, err, "não encontrado")
	})

	t.Run("Erro na AWS", func(t *testing.T) {
		mockClient := &MockDynamoLoader{
			GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
				return nil, errors.New("throttled")
			},
		}
		_, err := NewLoader().loadFromDynamoDBInternal(context.Background(), mockClient, "dynamodb://T/k")
		assert.ErrorContains(t, err, "throttled")
	})
}
