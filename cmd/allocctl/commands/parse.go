package commands

import (
	"github.com/spf13/cobra"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/dto"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/batchcode"
)

// parseCmd decodifica códigos de lote sin necesidad de foto.
var parseCmd = &cobra.Command{
	Use:   "parse <code>...",
	Short: "Decodificar el identificador de códigos de lote",
	Long: `Imprime, por cada código, el formato reconocido (compacto o legado),
la fecha de producción y la secuencia. Un código sin identificador
se reporta con parsed=false.

Example:
  allocctl parse 25021001 AL-2502100112-02`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := make([]dto.IdentifierResponse, 0, len(args))
		for _, code := range args {
			id, ok := batchcode.Parse(code)
			out = append(out, dto.NewIdentifierResponse(code, id, ok))
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
