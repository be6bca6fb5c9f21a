package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tablebase-io/tablebase/internal/constants"
	"github.com/tablebase-io/tablebase/pkg/tablebase"
)

// NewRecordsCommand creates the records command group.
func NewRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record", "rec"},
		Short:   "Manage records",
		Long:    "List, create, update, and delete records in a table",
	}

	cmd.AddCommand(newRecordsListCommand())
	cmd.AddCommand(newRecordsGetCommand())
	cmd.AddCommand(newRecordsCreateCommand())
	cmd.AddCommand(newRecordsUpdateCommand())
	cmd.AddCommand(newRecordsReplaceCommand())
	cmd.AddCommand(newRecordsDeleteCommand())

	return cmd
}

type recordsListFlags struct {
	allPages   bool
	pageSize   int
	maxRecords int
	fields     []string
	filter     string
	view       string
	sortSpecs  []string
	cellFormat string
	offset     string
}

func newRecordsListCommand() *cobra.Command {
	flags := &recordsListFlags{}

	cmd := &cobra.Command{
		Use:   "list TABLE",
		Short: "List records in a table",
		Long:  "List the records of a table, one page at a time or across all pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsListCommand(args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", constants.DefaultPageSize, "records per page")
	cmd.Flags().IntVar(&flags.maxRecords, "max-records", 0, "cap the total number of records returned")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "restrict the returned fields")
	cmd.Flags().StringVar(&flags.filter, "filter", "", "filter records with a formula")
	cmd.Flags().StringVar(&flags.view, "view", "", "list the records of a named view")
	cmd.Flags().StringArrayVar(&flags.sortSpecs, "sort", nil, "sort by FIELD or FIELD:desc (repeatable)")
	cmd.Flags().StringVar(&flags.cellFormat, "cell-format", "", "cell value representation (json, string)")
	cmd.Flags().StringVar(&flags.offset, "offset", "", "resume listing from a page cursor")

	return cmd
}

func runRecordsListCommand(table string, flags *recordsListFlags) error {
	client, err := CreateClient()
	if err != nil {
		return err
	}

	base, err := resolveBase()
	if err != nil {
		return err
	}

	params, err := buildListParams(flags)
	if err != nil {
		return err
	}

	ctx := context.Background()
	records := client.Records(base, table)

	if flags.allPages {
		all, err := tablebase.FetchAllRecords(ctx, records, params)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		return outputRecords(all, "")
	}

	page, err := records.ListPage(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	return outputRecords(page.Records, page.Offset)
}

func buildListParams(flags *recordsListFlags) (*tablebase.ListParams, error) {
	params := tablebase.NewListParams().
		WithFields(flags.fields...).
		WithFilterByFormula(flags.filter).
		WithMaxRecords(flags.maxRecords).
		WithPageSize(flags.pageSize).
		WithView(flags.view).
		WithCellFormat(tablebase.CellFormat(flags.cellFormat)).
		WithOffset(flags.offset)

	for _, spec := range flags.sortSpecs {
		field, direction := parseSortSpec(spec)
		params.WithSort(field, direction)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}

// parseSortSpec splits a FIELD or FIELD:direction sort argument.
func parseSortSpec(spec string) (string, tablebase.SortDirection) {
	field, direction, found := strings.Cut(spec, ":")
	if !found {
		return field, ""
	}

	return field, tablebase.SortDirection(direction)
}

func newRecordsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TABLE RECORD_ID",
		Short: "Get a record",
		Long:  "Fetch a single record by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			base, err := resolveBase()
			if err != nil {
				return err
			}

			record, err := client.Records(base, args[0]).Find(context.Background(), args[1])
			if err != nil {
				return fmt.Errorf("failed to get record: %w", err)
			}

			return outputRecord(record)
		},
	}
}

func newRecordsCreateCommand() *cobra.Command {
	var (
		fieldsJSON string
		typecast   bool
	)

	cmd := &cobra.Command{
		Use:   "create TABLE",
		Short: "Create a record",
		Long:  "Create a record from a JSON object of field values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			base, err := resolveBase()
			if err != nil {
				return err
			}

			fields, err := parseFieldsJSON(fieldsJSON)
			if err != nil {
				return err
			}

			record, err := client.Records(base, args[0]).
				Create(context.Background(), fields, writeOptions(typecast))
			if err != nil {
				return fmt.Errorf("failed to create record: %w", err)
			}

			return outputRecord(record)
		},
	}

	cmd.Flags().StringVar(&fieldsJSON, "fields", "", "field values as a JSON object")
	cmd.Flags().BoolVar(&typecast, "typecast", false, "coerce field value types on write")

	return cmd
}

func newRecordsUpdateCommand() *cobra.Command {
	var (
		fieldsJSON string
		typecast   bool
	)

	cmd := &cobra.Command{
		Use:   "update TABLE RECORD_ID",
		Short: "Update a record",
		Long:  "Merge a JSON object of field values into a record; unnamed fields keep their values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			base, err := resolveBase()
			if err != nil {
				return err
			}

			fields, err := parseFieldsJSON(fieldsJSON)
			if err != nil {
				return err
			}

			record, err := client.Records(base, args[0]).
				Update(context.Background(), args[1], fields, writeOptions(typecast))
			if err != nil {
				return fmt.Errorf("failed to update record: %w", err)
			}

			return outputRecord(record)
		},
	}

	cmd.Flags().StringVar(&fieldsJSON, "fields", "", "field values as a JSON object")
	cmd.Flags().BoolVar(&typecast, "typecast", false, "coerce field value types on write")

	return cmd
}

func newRecordsReplaceCommand() *cobra.Command {
	var (
		fieldsJSON string
		typecast   bool
	)

	cmd := &cobra.Command{
		Use:   "replace TABLE RECORD_ID",
		Short: "Replace a record",
		Long:  "Replace all field values of a record; unnamed fields are cleared",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			base, err := resolveBase()
			if err != nil {
				return err
			}

			fields, err := parseFieldsJSON(fieldsJSON)
			if err != nil {
				return err
			}

			record, err := client.Records(base, args[0]).
				Replace(context.Background(), args[1], fields, writeOptions(typecast))
			if err != nil {
				return fmt.Errorf("failed to replace record: %w", err)
			}

			return outputRecord(record)
		},
	}

	cmd.Flags().StringVar(&fieldsJSON, "fields", "", "field values as a JSON object")
	cmd.Flags().BoolVar(&typecast, "typecast", false, "coerce field value types on write")

	return cmd
}

func newRecordsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TABLE RECORD_ID",
		Short: "Delete a record",
		Long:  "Delete a single record by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			base, err := resolveBase()
			if err != nil {
				return err
			}

			deleted, err := client.Records(base, args[0]).Destroy(context.Background(), args[1])
			if err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}

			fmt.Printf("Record %s deleted\n", deleted.ID)

			return nil
		},
	}
}

func writeOptions(typecast bool) *tablebase.WriteOptions {
	if !typecast {
		return nil
	}

	return &tablebase.WriteOptions{Typecast: true}
}

func outputRecord(record *tablebase.Record) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(record)
	case OutputFormatYAML:
		return StandardYAMLRenderer(record)
	default:
		return renderRecordTable(record)
	}
}

func outputRecords(records []tablebase.Record, offset string) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(records)
	case OutputFormatYAML:
		return StandardYAMLRenderer(records)
	default:
		return renderRecordsTable(records, offset)
	}
}
