// Package output renders command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Format selects how a command renders its result. *Format implements
// pflag.Value, so it binds directly to an --output flag.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// ParseFormat accepts a format name in any case; "yml" is an alias of yaml
// and the empty string means table.
func ParseFormat(s string) (Format, error) {
	value := Format(strings.ToLower(strings.TrimSpace(s)))
	switch value {
	case "":
		return FormatTable, nil
	case "yml":
		return FormatYAML, nil
	case FormatTable, FormatJSON, FormatYAML:
		return value, nil
	}
	return "", fmt.Errorf("invalid output format %q (valid: table, json, yaml)", s)
}

func (f *Format) String() string { return string(*f) }

func (f *Format) Set(s string) error {
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f *Format) Type() string { return "format" }

// Structured reports whether f is a machine-readable format.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}

// Formatter writes command results to Writer.
type Formatter struct {
	Format    Format
	NoHeaders bool
	Writer    io.Writer
}

// NewFormatter creates a formatter writing to w, or stdout when w is nil.
func NewFormatter(format Format, w io.Writer) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	return &Formatter{Format: format, Writer: w}
}

// Print encodes data as JSON, or as YAML for every other format.
func (f *Formatter) Print(data interface{}) error {
	if f.Format == FormatJSON {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	enc := yaml.NewEncoder(f.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// TableData is a header row plus body rows of equal width.
type TableData struct {
	Headers []string
	Rows    [][]string
}

// records keys every row by its snake_cased header, so "Out Dir" becomes
// out_dir like the JSON fields of reports and directives.
func (d TableData) records() []map[string]string {
	keys := make([]string, len(d.Headers))
	for i, h := range d.Headers {
		keys[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
	}

	records := make([]map[string]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make(map[string]string, len(keys))
		for i, cell := range row {
			if i < len(keys) {
				record[keys[i]] = cell
			}
		}
		records = append(records, record)
	}
	return records
}

// PrintTable renders data as a borderless table, or as a list of records
// for the structured formats.
func (f *Formatter) PrintTable(data TableData) error {
	if f.Format.Structured() {
		return f.Print(data.records())
	}

	table := tablewriter.NewWriter(f.Writer)
	if !f.NoHeaders {
		table.SetHeader(data.Headers)
	}
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("   ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(data.Rows)
	table.Render()
	return nil
}

// PrintKeyValues writes one "key: value" line per pair with the values
// aligned. It is the table rendering of a single record; callers print
// the record itself for the structured formats.
func (f *Formatter) PrintKeyValues(pairs [][2]string) error {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		if _, err := fmt.Fprintf(f.Writer, "%-*s  %s\n", width+1, p[0]+":", p[1]); err != nil {
			return err
		}
	}
	return nil
}

// HumanBytes renders a byte count with a binary unit.
func HumanBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value, suffix := float64(n)/unit, 0
	for value >= unit && suffix < len("KMGTPE")-1 {
		value /= unit
		suffix++
	}
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPE"[suffix])
}
