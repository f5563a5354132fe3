package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/report"
	infrapdf "github.com/rogerboy38/raven-ai-agent-sub002/internal/infrastructure/pdf"
)

// pickingListCmd genera la lista de surtido en PDF.
var pickingListCmd = &cobra.Command{
	Use:   "picking-list",
	Short: "Generar la lista de surtido en PDF",
	Long: `Calcula el plan con los mismos flags que select y escribe el PDF
de la lista de surtido en --out ("-" = salida estándar).

Example:
  allocctl picking-list --snapshot inventario.yaml --item ALOE-200X --qty 100 --out surtido.pdf`,
	RunE: runPickingList,
}

var (
	pickingOut     string
	pickingCompany string
)

func init() {
	rootCmd.AddCommand(pickingListCmd)

	addRequirementFlags(pickingListCmd)
	pickingListCmd.Flags().StringVar(&pickingOut, "out", "surtido.pdf", "archivo de salida")
	pickingListCmd.Flags().StringVar(&pickingCompany, "company", "", "nombre de la empresa en el encabezado")
}

func runPickingList(cmd *cobra.Command, _ []string) error {
	req, err := selectRequestFromFlags(cmd)
	if err != nil {
		return err
	}
	svc, cfg, err := newService(cmd)
	if err != nil {
		return err
	}
	company := pickingCompany
	if company == "" {
		company = cfg.App.Name
	}
	ucReq, err := req.ToUseCase()
	if err != nil {
		return err
	}
	uc := report.NewPickingListUseCase(svc, infrapdf.NewPickingListRenderer(company))
	doc, plan, err := uc.Generate(cmd.Context(), ucReq)
	if err != nil {
		return err
	}
	if err := writeFile(cmd.OutOrStdout(), pickingOut, doc); err != nil {
		return fmt.Errorf("escribir %s: %w", pickingOut, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "plan %s (%s): %d bytes en %s\n", plan.PlanID, plan.OverallStatus, len(doc), pickingOut)
	return nil
}
