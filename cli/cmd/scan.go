package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/jstmpl/interp"
)

// Scan prints the chunks of a template without evaluating placeholders.
type Scan struct {
	Template string `arg:"" help:"Template text; read from --file or stdin when omitted" optional:""`
	File     string `       help:"Template file or '-' for stdin"                                   placeholder:"FILE" short:"f"`
	Format   string `       help:"Output format"                                                   default:"text" enum:"text,json,yaml" short:"o"`
}

// chunkRecord is the serialized form of an [interp.Chunk].
type chunkRecord struct {
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`
	Pos  int    `json:"pos"  yaml:"pos"`
}

// Run executes the scan command.
func (s *Scan) Run(ctx context.Context) error {
	src, err := readSource(s.Template, s.File)
	if err != nil {
		return err
	}

	chunks, err := interp.All(src)
	if err != nil {
		return err
	}

	records := make([]chunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = chunkRecord{Kind: c.Kind.String(), Text: c.Text, Pos: c.Pos}
	}

	return writeChunks(stdout(ctx), s.Format, records)
}

func writeChunks(w io.Writer, format string, records []chunkRecord) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(records)
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil

	case "yaml":
		data, err := yaml.MarshalWithOptions(records, yaml.Indent(2))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Pos, r.Kind, strconv.Quote(r.Text))
	}

	err := tw.Flush()
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
