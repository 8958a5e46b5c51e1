package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-npy/npy"
)

// inspectCmd prints the parsed header of each file.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.npy>...",
	Short: "Print parsed .npy headers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			h, err := npy.Stat(path)
			if err != nil {
				cmd.PrintErrf("%s: %v\n", path, err)
				failed++
				continue
			}
			printHeader(cmd.OutOrStdout(), path, h)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(args))
		}
		return nil
	},
}

func printHeader(w io.Writer, path string, h *npy.Header) {
	fmt.Fprintf(w, "=== %s ===\n", path)
	fmt.Fprintf(w, "  Version:     %d.%d\n", h.Version[0], h.Version[1])
	fmt.Fprintf(w, "  Descr:       %s\n", h.Descr)
	if h.Type.IsRecognized() {
		fmt.Fprintf(w, "  Type:        %s (%d bytes)\n", h.Type, h.Type.Size)
	} else {
		fmt.Fprintf(w, "  Type:        %s [unrecognized, reads are empty]\n", h.Type)
	}
	fmt.Fprintf(w, "  Order:       %s\n", h.Order)
	fmt.Fprintf(w, "  Shape:       %v\n", h.Shape)
	fmt.Fprintf(w, "  Header len:  %d\n", h.HeaderLen)
	fmt.Fprintf(w, "  Data offset: %d\n", h.DataOffset)
	fmt.Fprintf(w, "  Payload:     %d bytes\n", h.NBytes())
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
