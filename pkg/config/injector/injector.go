package injector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Captura padrões ${tipo.chave}
// Ex: ${env.API_KEY}, ${ssm./insurance/token}, ${secret.oauth-client}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// SSMClient é o subconjunto do client SSM usado pelo Injector.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SecretsClient é o subconjunto do client Secrets Manager usado pelo Injector.
type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Injector resolve referências a variáveis de ambiente, parâmetros SSM e
// segredos do Secrets Manager em todos os campos string de uma struct.
type Injector struct {
	mu      sync.Mutex
	ssm     SSMClient
	secrets SecretsClient
}

type Option func(*Injector)

func WithSSM(c SSMClient) Option { return func(i *Injector) { i.ssm = c } }

func WithSecrets(c SecretsClient) Option { return func(i *Injector) { i.secrets = c } }

// New cria um Injector. Os clients AWS ausentes são criados sob demanda a
// partir do ambiente, na primeira referência ssm/secret encontrada.
func New(opts ...Option) *Injector {
	i := &Injector{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inject percorre target (ponteiro para struct) substituindo as referências.
func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.walk(ctx, v.Elem())
}

func (i *Injector) walk(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for k := 0; k < t.NumField(); k++ {
			field := t.Field(k)
			value := v.Field(k)
			if !field.IsExported() {
				continue
			}

			// tag env:"NOME" tem precedência sobre o valor do YAML
			if tag := field.Tag.Get("env"); tag != "" && value.CanSet() {
				if raw, ok := os.LookupEnv(tag); ok {
					if err := setField(value, raw); err != nil {
						return fmt.Errorf("env %s: %w", tag, err)
					}
				}
			}

			if value.Kind() == reflect.String && value.CanSet() {
				resolved, err := i.interpolate(ctx, value.String())
				if err != nil {
					return err
				}
				value.SetString(resolved)
				continue
			}

			if err := i.walk(ctx, value); err != nil {
				return err
			}
		}

	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return nil
		}
		return i.walkMap(ctx, v)

	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			return i.walk(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.walk(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkMap trata mapas de string e mapas dinâmicos; valores de mapa não são
// endereçáveis, por isso são regravados com SetMapIndex.
func (i *Injector) walkMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	updates := make(map[string]reflect.Value)

	for iter.Next() {
		elem := iter.Value()
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			resolved, err := i.interpolate(ctx, elem.String())
			if err != nil {
				return err
			}
			val := reflect.ValueOf(resolved)
			if v.Type().Elem().Kind() != reflect.Interface {
				val = val.Convert(v.Type().Elem())
			}
			updates[iter.Key().String()] = val

		case reflect.Map:
			if err := i.walk(ctx, elem); err != nil {
				return err
			}

		case reflect.Struct:
			// cópia endereçável da struct
			cp := reflect.New(elem.Type()).Elem()
			cp.Set(elem)
			if err := i.walk(ctx, cp); err != nil {
				return err
			}
			updates[iter.Key().String()] = cp
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), val)
	}
	return nil
}

func (i *Injector) interpolate(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var firstErr error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := pattern.FindStringSubmatch(match)
		val, err := i.fetch(ctx, parts[1], parts[2])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return match
		}
		return val
	})
	return result, firstErr
}

func (i *Injector) fetch(ctx context.Context, source, key string) (string, error) {
	switch source {
	case "env":
		// variável ausente resolve para vazio
		return os.Getenv(key), nil

	case "ssm":
		client, err := i.ssmClient(ctx)
		if err != nil {
			return "", err
		}
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(key),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return "", fmt.Errorf("erro no SSM GetParameter (%s): %w", key, err)
		}
		if out.Parameter == nil || out.Parameter.Value == nil {
			return "", fmt.Errorf("parâmetro SSM '%s' sem valor", key)
		}
		return *out.Parameter.Value, nil

	case "secret":
		return i.secret(ctx, key)
	}
	return "", fmt.Errorf("fonte desconhecida: %s", source)
}

// secret aceita "id" ou "id#campo" para segredos em JSON.
func (i *Injector) secret(ctx context.Context, ref string) (string, error) {
	id, field, _ := strings.Cut(ref, "#")

	client, err := i.secretsClient(ctx)
	if err != nil {
		return "", err
	}
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager (%s): %w", id, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo '%s' sem SecretString", id)
	}
	if field == "" {
		return *out.SecretString, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(*out.SecretString), &data); err != nil {
		return "", fmt.Errorf("segredo '%s' não é JSON: %w", id, err)
	}
	val, ok := data[field]
	if !ok {
		return "", fmt.Errorf("campo '%s' ausente no segredo '%s'", field, id)
	}
	return fmt.Sprintf("%v", val), nil
}

func (i *Injector) ssmClient(ctx context.Context) (SSMClient, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ssm == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("erro config aws: %w", err)
		}
		i.ssm = ssm.NewFromConfig(cfg)
	}
	return i.ssm, nil
}

func (i *Injector) secretsClient(ctx context.Context) (SecretsClient, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.secrets == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("erro config aws: %w", err)
		}
		i.secrets = secretsmanager.NewFromConfig(cfg)
	}
	return i.secrets, nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64, reflect.Int32:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	}
	return nil
}
