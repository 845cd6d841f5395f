package config

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/insurance-sim/pkg/config/injector"
	"gopkg.in/yaml.v3"
)

// S3Downloader é o subconjunto do client S3 usado pelo Loader.
type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// DynamoGetter é o subconjunto do client DynamoDB usado pelo Loader.
type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Loader carrega o AppConfig de um arquivo local, de um objeto S3
// (s3://bucket/key) ou de um item DynamoDB
// (dynamodb://tabela/chave?col=config&pk=id).
type Loader struct {
	s3        S3Downloader
	dynamo    DynamoGetter
	injector  *injector.Injector
	validator *ConfigValidator
}

// LoaderOption customiza o Loader.
type LoaderOption func(*Loader)

// WithS3 injeta o client S3 (por padrão criado a partir do ambiente AWS).
func WithS3(c S3Downloader) LoaderOption { return func(l *Loader) { l.s3 = c } }

// WithDynamo injeta o client DynamoDB.
func WithDynamo(c DynamoGetter) LoaderOption { return func(l *Loader) { l.dynamo = c } }

// WithInjector substitui o injector de variáveis.
func WithInjector(i *injector.Injector) LoaderOption { return func(l *Loader) { l.injector = i } }

// WithValidator substitui o validador. nil desliga a validação.
func WithValidator(v *ConfigValidator) LoaderOption { return func(l *Loader) { l.validator = v } }

// NewLoader cria um Loader com injector e validador padrão.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		injector:  injector.New(),
		validator: NewValidator(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load detecta o esquema da fonte, aplica injeção, defaults e validação.
func (l *Loader) Load(ctx context.Context, source string) (*AppConfig, error) {
	var (
		raw []byte
		err error
	)

	switch {
	case strings.HasPrefix(source, "s3://"):
		if l.s3 == nil {
			awsCfg, cfgErr := awsconfig.LoadDefaultConfig(ctx)
			if cfgErr != nil {
				return nil, fmt.Errorf("erro config aws: %w", cfgErr)
			}
			l.s3 = s3.NewFromConfig(awsCfg)
		}
		raw, err = l.loadFromS3(ctx, source)

	case strings.HasPrefix(source, "dynamodb://"):
		if l.dynamo == nil {
			awsCfg, cfgErr := awsconfig.LoadDefaultConfig(ctx)
			if cfgErr != nil {
				return nil, fmt.Errorf("erro config aws: %w", cfgErr)
			}
			l.dynamo = dynamodb.NewFromConfig(awsCfg)
		}
		raw, err = l.loadFromDynamoDB(ctx, source)

	default:
		raw, err = os.ReadFile(strings.TrimPrefix(source, "file://"))
	}
	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", source, err)
	}

	return l.Parse(ctx, raw)
}

// Parse decodifica o YAML e aplica injeção, defaults e validação.
func (l *Loader) Parse(ctx context.Context, data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}

	if l.injector != nil {
		if err := l.injector.Inject(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
		}
	}

	cfg.ApplyDefaults()

	if l.validator != nil {
		if err := l.validator.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("validação da configuração falhou: %w", err)
		}
	}
	return &cfg, nil
}

func (l *Loader) loadFromS3(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (l *Loader) loadFromDynamoDB(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	table := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config"
	}
	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := l.dynamo.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &table,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item '%s' não encontrado na tabela '%s'", pkValue, table)
	}

	var item map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}

	content, ok := item[colName].(string)
	if !ok || content == "" {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}
	return []byte(content), nil
}
