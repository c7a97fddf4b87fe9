// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/forward-convert/internal/client"
	"github.com/pdiddy/forward-convert/internal/convert"
)

// defaultOutputName matches the file name the web form downloads.
const defaultOutputName = "nyanpass-forwards.json"

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a Xiandan export into Nyanpass rule lines",
	Long: `Convert reads a Xiandan panel export (from file, or stdin when the file is
omitted or "-") and writes one Nyanpass rule per line to stdout or --output.

With --server the document is posted to a running forward-convert instance
instead of being converted locally. Any invalid rule fails the whole file and
nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "output file (default stdout; use \"auto\" for "+defaultOutputName+")")
	convertCmd.Flags().String("server", "", "base URL of a forward-convert server (e.g. http://localhost:8080)")
	convertCmd.Flags().Duration("timeout", 0, "HTTP timeout when using --server (default 30s)")
	viper.BindPFlag("client.timeout", convertCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	serverURL, _ := cmd.Flags().GetString("server")
	var out string
	if serverURL != "" {
		out, err = client.New(serverURL, appConfig.Client, nil).ConvertContext(cmd.Context(), raw)
	} else {
		out, err = convert.RuleConverter{}.Convert(raw)
	}
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "auto" {
		output = defaultOutputName
	}
	if output == "" {
		if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "共转换 %d 条转发规则\n", countRules(out))
	return nil
}

// readInput returns the named file, or stdin for no argument or "-".
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}

func countRules(ndjson string) int {
	n := 0
	for _, line := range strings.Split(ndjson, "\n") {
		if line != "" {
			n++
		}
	}
	return n
}
