package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/infrastructure/memory"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/config"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/logger"
)

var (
	// Global flags
	snapshotFile string
	logLevel     string
)

// rootCmd comando base sin subcomandos.
var rootCmd = &cobra.Command{
	Use:   "allocctl",
	Short: "Asignación FEFO de lotes desde la línea de comandos",
	Long: `allocctl ejecuta el motor de asignación de lotes sobre una foto YAML
del inventario (artículos, bodegas, lotes, especificaciones y precios).

Los valores por defecto (bodega, estrategia, pesos, lista de precios)
se leen de las mismas variables ALLOC_* que usa el servicio HTTP.

Examples:
  allocctl select --snapshot inventario.yaml --item ALOE-200X --qty 100
  allocctl select --snapshot inventario.yaml --item ALOE-200X --qty 100 --strategy all
  allocctl parse 25021001 ALOE110125101
  allocctl picking-list --snapshot inventario.yaml --item ALOE-200X --qty 100 --out surtido.pdf`,
	SilenceUsage: true,
}

// Execute ejecuta el comando raíz. Lo llama main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&snapshotFile, "snapshot", "", "foto YAML del inventario")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "nivel de log (trace|debug|info|warn|error)")
}

// newService arma el servicio sobre la foto indicada por --snapshot.
func newService(cmd *cobra.Command) (*appalloc.Service, *config.Config, error) {
	if snapshotFile == "" {
		return nil, nil, fmt.Errorf("--snapshot es obligatorio")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	store, err := memory.LoadFile(snapshotFile)
	if err != nil {
		return nil, nil, err
	}
	defaults, err := appalloc.DefaultsFromConfig(cfg.Alloc)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Env: "development", Level: logLevel, Output: cmd.ErrOrStderr()})
	engine := appalloc.NewEngine(nil, cfg.Alloc.MaxAlternatives, log)
	return appalloc.NewService(store.Runner(), engine, defaults, log), cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFile(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
