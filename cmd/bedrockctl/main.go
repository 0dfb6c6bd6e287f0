package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bedrockapp/internal/app"
	"bedrockapp/internal/backend"
	"bedrockapp/internal/config"
	"bedrockapp/internal/handlers"
)

var (
	prompt   string
	category string
	function string
)

var rootCmd = &cobra.Command{
	Use:   "bedrockctl",
	Short: "Local tooling for the invoke-bedrock backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
}

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run the invoke handler locally against Bedrock",
	Long: `invoke runs the same handler the Lambda uses, with AWS credentials from the
default chain, and prints the status code and JSON body.

Example:
  bedrockctl invoke --prompt "What is Amazon S3?" --category storage`,
	RunE: runInvoke,
}

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "Print the backend outputs document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return printJSON(backend.Define(cfg).Outputs())
	},
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the IAM policy attached to a function role",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		name := function
		if name == "" {
			name = cfg.FunctionName
		}
		doc, err := backend.Define(cfg).PolicyDocument(name)
		if err != nil {
			return err
		}
		fmt.Println(string(doc))
		return nil
	},
}

func init() {
	invokeCmd.Flags().StringVar(&prompt, "prompt", "", "Prompt sent to the model")
	invokeCmd.Flags().StringVar(&category, "category", "", "Category echoed in the response")
	invokeCmd.MarkFlagRequired("prompt")

	policyCmd.Flags().StringVar(&function, "function", "", "Function name (defaults to FUNCTION_NAME)")

	rootCmd.AddCommand(invokeCmd, outputsCmd, policyCmd)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}

	resp, err := a.Invoke.Handle(ctx, handlers.InvokeEvent{Prompt: prompt, Category: category})
	if err != nil {
		return err
	}

	fmt.Printf("status: %d\n", resp.StatusCode)
	var body any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		fmt.Println(resp.Body)
		return nil
	}
	return printJSON(body)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
