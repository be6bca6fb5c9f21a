package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"github.com/tablebase-io/tablebase/pkg/tablebase"
	"github.com/tablebase-io/tablebase/pkg/tbclient"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// YAML formatting.
	defaultYAMLIndent = 2
)

// Common static errors used throughout the commands package.
var (
	ErrBaseRequired        = errors.New("base is required (use --base or set TABLEBASE_BASE)")
	ErrFieldsJSONNeeded    = errors.New("record fields are required (use --fields with a JSON object)")
	ErrAPIKeyInputRequired = errors.New("an API key is required")
)

// CreateClient creates a Tablebase client from the resolved CLI configuration.
func CreateClient() (tablebase.Client, error) {
	config := &tablebase.Config{
		APIKey:      viper.GetString("api-key"),
		EndpointURL: viper.GetString("endpoint"),
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = &stderrLogger{}
	}

	client, err := tbclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// stderrLogger writes debug output to stderr so it never mixes with rendered
// command output on stdout.
type stderrLogger struct{}

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	fmt.Fprintf(os.Stderr, "[%s] %s", level, msg)

	for _, key := range sortedLogKeys(fields) {
		fmt.Fprintf(os.Stderr, " %s=%v", key, fields[key])
	}

	fmt.Fprintln(os.Stderr)
}

func sortedLogKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

// resolveBase returns the target base id from flags, config, or environment.
func resolveBase() (string, error) {
	base := viper.GetString("base")
	if base == "" {
		return "", ErrBaseRequired
	}

	return base, nil
}

// parseFieldsJSON decodes a --fields argument into a field bag.
func parseFieldsJSON(raw string) (tablebase.Fields, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrFieldsJSONNeeded
	}

	var fields tablebase.Fields

	err := json.Unmarshal([]byte(raw), &fields)
	if err != nil {
		return nil, fmt.Errorf("parsing --fields: %w", err)
	}

	return fields, nil
}

// StandardJSONRenderer creates a standard JSON encoder.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer creates a standard YAML encoder.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(defaultYAMLIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

// renderRecordTable renders a single record as a field/value table.
func renderRecordTable(record *tablebase.Record) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")
	_ = table.Append("id", record.ID)

	if !record.CreatedTime.IsZero() {
		_ = table.Append("createdTime", record.CreatedTime.Format("2006-01-02 15:04:05"))
	}

	for _, name := range sortedFieldNames(record.Fields) {
		_ = table.Append(name, formatCellValue(record.Fields[name]))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderRecordsTable renders a batch of records as one row per record. The
// column set is the union of field names across the batch.
func renderRecordsTable(records []tablebase.Record, offset string) error {
	if len(records) == 0 {
		fmt.Println("No records found")

		return nil
	}

	columns := unionFieldNames(records)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(append([]string{"ID"}, columns...))

	for _, record := range records {
		row := []string{record.ID}
		for _, name := range columns {
			row = append(row, formatCellValue(record.Fields[name]))
		}

		_ = table.Append(row)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if offset != "" {
		fmt.Printf("\nMore records available, resume with --offset %s\n", offset)
	}

	return nil
}

func sortedFieldNames(fields tablebase.Fields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func unionFieldNames(records []tablebase.Record) []string {
	seen := make(map[string]bool)

	var names []string

	for _, record := range records {
		for name := range record.Fields {
			if !seen[name] {
				seen[name] = true

				names = append(names, name)
			}
		}
	}

	sort.Strings(names)

	return names
}

func formatCellValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return NotAvailable
	case string:
		return v
	case bool:
		if v {
			return "true"
		}

		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
