package common

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fjacquet/pnl-forecast/internal/container"
	"fjacquet/pnl-forecast/internal/validation"
)

// Output selects the format and destination of a report.
type Output struct {
	Format string
	File   string
}

// Report renders one result in each supported format. A nil renderer means
// the format is not offered by the command.
type Report struct {
	Text func(w io.Writer) error
	CSV  func(w io.Writer) error
	YAML any
}

// AddOutputFlags registers --format and --output on cmd.
func AddOutputFlags(cmd *cobra.Command, o *Output) {
	cmd.Flags().StringVarP(&o.Format, "format", "f", "text", "Output format (text, csv, yaml)")
	cmd.Flags().StringVarP(&o.File, "output", "o", "", "Output file (default: stdout)")
}

// Write renders r in the selected format to the output file, or to the
// command's output stream when no file is set.
func (o Output) Write(cmd *cobra.Command, c *container.Container, r Report) error {
	if err := validation.IsValidOutputFormat(o.Format); err != nil {
		return err
	}

	var write func(io.Writer) error
	switch o.Format {
	case "csv":
		write = r.CSV
	case "yaml":
		if r.YAML != nil {
			write = func(w io.Writer) error { return encodeYAML(w, r.YAML) }
		}
	default:
		write = r.Text
	}
	if write == nil {
		return fmt.Errorf("format %s is not available for %s", o.Format, cmd.Name())
	}

	if o.File == "" {
		return write(cmd.OutOrStdout())
	}
	return c.GetExporter().ToFile(o.File, write)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding YAML: %w", err)
	}
	return enc.Close()
}
