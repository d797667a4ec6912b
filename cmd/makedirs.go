package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twidi/streamdeckfs-go/internal/adapters/config"
	"github.com/twidi/streamdeckfs-go/internal/ui"
)

var (
	makeDirsModelClass string
	makeDirsSerial      string
)

var makeDirsCmd = &cobra.Command{
	Use:     "make-dirs",
	Short:   "Scaffold an empty deck skeleton (.model + PAGE_1)",
	GroupID: "scaffolding",
	RunE:    runMakeDirs,
}

func init() {
	makeDirsCmd.Flags().StringVar(&makeDirsModelClass, "device-class", "original-v2", "device class written to .model")
	makeDirsCmd.Flags().StringVar(&makeDirsSerial, "serial", "", "device serial written to .model")
	rootCmd.AddCommand(makeDirsCmd)
}

func runMakeDirs(cmd *cobra.Command, args []string) error {
	out := ui.NewOutput().WithVerbose(Verbose)

	deckDir, err := filepath.Abs(DeckDir)
	if err != nil {
		return fmt.Errorf("make-dirs: resolve deck dir: %w", err)
	}

	if err := config.WriteModel(deckDir, config.Model{
		DeviceClass: makeDirsModelClass,
		Serial:      makeDirsSerial,
	}); err != nil {
		return fmt.Errorf("make-dirs: write .model: %w", err)
	}
	out.Success(".model written")

	firstPage := filepath.Join(deckDir, "PAGE_1")
	if err := os.MkdirAll(firstPage, 0o755); err != nil {
		return fmt.Errorf("make-dirs: create PAGE_1: %w", err)
	}
	out.Success("PAGE_1 created")
	out.KeyValue("deck", deckDir)
	return nil
}
