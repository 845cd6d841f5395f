package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/raywall/insurance-sim/pkg/client"
	"github.com/raywall/insurance-sim/pkg/config"
	"github.com/raywall/insurance-sim/pkg/engine"
	"github.com/raywall/insurance-sim/pkg/gateway"
	"github.com/raywall/insurance-sim/pkg/rules"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// errFailed sinaliza falha já reportada ao usuário.
var errFailed = errors.New("falhou")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(stderr, "Erro: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "toolkit",
		Short:         "Ferramentas do simulador da API de seguros",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errFailed
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newValidateCmd(), newCallCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Valida estrutura, semântica e expressões CEL de uma configuração",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runValidate(cmd.Context(), file, cmd.OutOrStdout()) != 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Caminho do arquivo YAML ou URI s3:// / dynamodb://")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCallCmd() *cobra.Command {
	var args callArgs
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Executa uma chamada pelo client resiliente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runCall(cmd.Context(), args, cmd.OutOrStdout(), cmd.ErrOrStderr()) != 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&args.file, "file", "", "Caminho do arquivo YAML ou URI s3:// / dynamodb://")
	cmd.Flags().StringVar(&args.method, "method", http.MethodGet, "Método HTTP")
	cmd.Flags().StringVar(&args.path, "path", "", "Path da chamada, ex: /api/customers?page=2")
	cmd.Flags().StringVar(&args.data, "data", "", "Body JSON")
	cmd.Flags().BoolVar(&args.sim, "sim", false, "Atende a chamada pelo gateway em memória")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func runValidate(ctx context.Context, source string, out io.Writer) int {
	fmt.Fprintf(out, "Analisando configuração: %s ...\n", source)

	rm, err := rules.NewRuleManager()
	if err != nil {
		fmt.Fprintf(out, "Erro interno do analisador: %v\n", err)
		return 1
	}
	loader := config.NewLoader(config.WithValidator(config.NewValidator().WithExprChecker(rm.Compile)))

	cfg, err := loader.Load(ctx, source)
	if err != nil {
		fmt.Fprintf(out, "Erro de carregamento/estrutura:\n%v\n", err)
		return 1
	}

	report, err := engine.Analyze(cfg)
	if err != nil {
		fmt.Fprintf(out, "Erro interno do analisador: %v\n", err)
		return 1
	}

	if os.Getenv("OUTPUT_FORMAT") == "json" {
		raw, _ := json.Marshal(report)
		fmt.Fprintln(out, string(raw))
	} else {
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "aviso: %s\n", w)
		}
		for _, e := range report.Errors {
			fmt.Fprintf(out, " - %s\n", e)
		}
		if report.Valid {
			fmt.Fprintln(out, "Configuração válida.")
		}
	}
	if !report.Valid {
		return 1
	}
	return 0
}

type callArgs struct {
	file   string
	method string
	path   string
	data   string
	sim    bool
}

func runCall(ctx context.Context, args callArgs, stdout, stderr io.Writer) int {
	cfg, err := config.NewLoader().Load(ctx, args.file)
	if err != nil {
		fmt.Fprintf(stderr, "Erro de carregamento: %v\n", err)
		return 1
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()

	var gw *gateway.Gateway
	if args.sim {
		svc, err := engine.NewServiceEngine(cfg, args.file, engine.WithLogger(log))
		if err != nil {
			fmt.Fprintf(stderr, "Erro ao montar simulador: %v\n", err)
			return 1
		}
		gw = svc.Gateway
	}

	c, mgr, err := engine.NewClient(ctx, cfg, gw, log)
	if err != nil {
		fmt.Fprintf(stderr, "Erro ao montar client: %v\n", err)
		return 1
	}
	if mgr != nil {
		defer mgr.Stop()
	}

	var body interface{}
	if args.data != "" {
		if err := json.Unmarshal([]byte(args.data), &body); err != nil {
			fmt.Fprintf(stderr, "Erro: -data não é JSON válido: %v\n", err)
			return 1
		}
	}

	path, query := splitQuery(args.path)
	env := c.Do(ctx, client.Request{
		Method: strings.ToUpper(args.method),
		Path:   path,
		Query:  query,
		Body:   body,
	})

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(env)
	if !env.Success {
		return 1
	}
	return 0
}

// splitQuery separa "?a=1&b=2" do path para que o client monte a URL.
func splitQuery(raw string) (string, map[string]interface{}) {
	path, rawQuery, found := strings.Cut(raw, "?")
	if !found || rawQuery == "" {
		return path, nil
	}
	values, _ := url.ParseQuery(rawQuery)
	query := make(map[string]interface{}, len(values))
	for k, v := range values {
		query[k] = v[len(v)-1]
	}
	return path, query
}
