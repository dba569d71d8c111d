package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askQuestion string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about the ingested documents",
	Long: `Ask a one-shot question. The answer is grounded in the most relevant
indexed segments when any clear the similarity threshold; the source files
used are listed after the answer.

Examples:
  docchat ask -q "what does the deployment pipeline do?"
  docchat ask -q "summarise the API" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	c, err := buildCore(cfg, rootDir)
	if err != nil {
		return err
	}
	defer c.close()

	answer, err := c.engine.Answer(cmd.Context(), askQuestion)
	if err != nil {
		return err
	}

	if askJSON {
		out, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(answer.Response)
	if len(answer.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}
