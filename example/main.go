// Command blog prints and queries the schema of the example blog.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/graphql-go/graphql"
	"github.com/spf13/cobra"

	"github.com/koba789/gqldecorator/decorator"
	"github.com/koba789/gqldecorator/example/blog"
	"github.com/koba789/gqldecorator/internal/logging"
	"github.com/koba789/gqldecorator/introspection"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "blog",
		Short:         "Inspect the GraphQL schema derived from the blog types",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("seed", true, "fill the store with sample data")

	rootCmd.AddCommand(newPrintCommand())
	rootCmd.AddCommand(newQueryCommand())
	return rootCmd
}

func newPrintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the schema as SDL or as an introspection result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			setupLogging(config)

			schema, err := buildSchema(config)
			if err != nil {
				return err
			}
			return printSchema(cmd.Context(), cmd.OutOrStdout(), schema, config.Format)
		},
	}
	cmd.Flags().String("format", "sdl", "output format: sdl or json")
	return cmd
}

func newQueryCommand() *cobra.Command {
	var variables string
	cmd := &cobra.Command{
		Use:   "query <document>",
		Short: "Execute a GraphQL document against an in-memory store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			setupLogging(config)

			schema, err := buildSchema(config)
			if err != nil {
				return err
			}

			var vars map[string]interface{}
			if variables != "" {
				if err := json.Unmarshal([]byte(variables), &vars); err != nil {
					return fmt.Errorf("invalid variables: %w", err)
				}
			}

			result := graphql.Do(graphql.Params{
				Schema:         schema,
				RequestString:  args[0],
				VariableValues: vars,
				Context:        cmd.Context(),
			})
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if result.HasErrors() {
				return fmt.Errorf("query failed with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variables, "variables", "", "variables as a JSON object")
	return cmd
}

func buildSchema(config *Config) (graphql.Schema, error) {
	store := blog.NewStore()
	if config.Seed {
		blog.Seed(store)
	}
	schema, err := blog.NewSchema(store, decorator.WithLogger(logging.Logger))
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build schema: %w", err)
	}
	return schema, nil
}

func printSchema(ctx context.Context, w io.Writer, schema graphql.Schema, format string) error {
	switch format {
	case "json":
		if ctx == nil {
			ctx = context.Background()
		}
		out, err := introspection.ComputeSchemaJSON(ctx, schema)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	default:
		_, err := io.WriteString(w, introspection.PrintSchema(schema))
		return err
	}
}
