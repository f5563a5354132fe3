package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/dto"
)

// selectCmd asigna lotes a un requerimiento e imprime el plan en JSON.
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Seleccionar lotes para un requerimiento",
	Long: `Calcula el plan de asignación e imprime la respuesta en JSON,
con el mismo formato que POST /api/allocations/select.

Con --strategy all se ejecutan las cuatro estrategias y se incluye
la comparación entre ellas.

Example:
  allocctl select --snapshot inventario.yaml --item ALOE-200X --qty 100
  allocctl select --snapshot inventario.yaml --item ALOE-200X --qty 100 --item GLICERINA --qty 4`,
	RunE: runSelect,
}

var (
	selectItems          []string
	selectQtys           []string
	selectStrategy       string
	selectWarehouse      string
	selectCustomer       string
	selectAsOf           string
	selectIncludeExpired bool
	selectOutput         string
)

func init() {
	rootCmd.AddCommand(selectCmd)
	addRequirementFlags(selectCmd)
}

// addRequirementFlags registra los flags del requerimiento (compartidos con picking-list).
func addRequirementFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&selectItems, "item", nil, "código de artículo (repetible)")
	f.StringArrayVar(&selectQtys, "qty", nil, "cantidad requerida, en el mismo orden que --item")
	f.StringVar(&selectStrategy, "strategy", "", "balanced|fefo|min_cost|min_batches|all")
	f.StringVar(&selectWarehouse, "warehouse", "", "bodega (vacío = por defecto)")
	f.StringVar(&selectCustomer, "customer", "", "cliente para la especificación")
	f.StringVar(&selectAsOf, "as-of", "", "fecha de referencia AAAA-MM-DD")
	f.BoolVar(&selectIncludeExpired, "include-expired", false, "considerar lotes vencidos")
	f.StringVar(&selectOutput, "output-qty", "", "cantidad de producto terminado para costo por unidad")
}

func runSelect(cmd *cobra.Command, _ []string) error {
	req, err := selectRequestFromFlags(cmd)
	if err != nil {
		return err
	}
	svc, _, err := newService(cmd)
	if err != nil {
		return err
	}
	ucReq, err := req.ToUseCase()
	if err != nil {
		return err
	}
	plan, err := svc.SelectBatchesForRequirement(cmd.Context(), ucReq)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), dto.NewPlanResponse(plan))
}

// selectRequestFromFlags arma el cuerpo equivalente a POST /api/allocations/select.
func selectRequestFromFlags(cmd *cobra.Command) (dto.SelectRequest, error) {
	if len(selectItems) == 0 {
		return dto.SelectRequest{}, fmt.Errorf("--item es obligatorio")
	}
	if len(selectItems) != len(selectQtys) {
		return dto.SelectRequest{}, fmt.Errorf("se esperaban %d valores --qty, hay %d", len(selectItems), len(selectQtys))
	}
	req := dto.SelectRequest{
		Warehouse: selectWarehouse,
		Strategy:  strings.TrimSpace(selectStrategy),
		Customer:  selectCustomer,
		AsOf:      selectAsOf,
	}
	if cmd.Flags().Changed("include-expired") {
		v := selectIncludeExpired
		req.IncludeExpired = &v
	}
	if selectOutput != "" {
		out, err := decimal.NewFromString(selectOutput)
		if err != nil {
			return dto.SelectRequest{}, fmt.Errorf("--output-qty inválido: %w", err)
		}
		req.OutputQuantity = &out
	}
	for i, code := range selectItems {
		qty, err := decimal.NewFromString(selectQtys[i])
		if err != nil {
			return dto.SelectRequest{}, fmt.Errorf("--qty %q inválido: %w", selectQtys[i], err)
		}
		req.Items = append(req.Items, dto.RequiredItemRequest{ItemCode: code, RequiredQty: qty})
	}
	return req, nil
}
