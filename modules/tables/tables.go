package tables

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/zclconf/go-cty/cty"
)

// TablesArgs are the arguments of Tables data.
type TablesArgs struct {
	Files      []string `cty:"files"`
	SkipHeader bool     `cty:"skip_header"`
	SkipFooter bool     `cty:"skip_footer"`
	Delimiter  string   `cty:"delimiter"`
}

// OpenTables reads every file as one table. The output shape is
// (rows, columns, 1).
func OpenTables(ctx context.Context, in *TablesArgs, _ []cty.Value) (any, error) {
	logger := ctxlog.FromContext(ctx)
	if len(in.Files) == 0 {
		return nil, operation.InvalidArgument("no files selected")
	}
	delim := []rune(in.Delimiter)
	if len(delim) != 1 {
		return nil, operation.InvalidArgument("delimiter must be a single character, got %q", in.Delimiter)
	}

	var header []cty.Value
	rows, columns := 0, 0
	for _, path := range in.Files {
		records, err := readRecords(path, delim[0])
		if err != nil {
			return nil, err
		}
		if in.SkipHeader && len(records) > 0 {
			if header == nil {
				for _, name := range records[0] {
					header = append(header, cty.StringVal(name))
				}
			}
			records = records[1:]
		}
		if in.SkipFooter && len(records) > 0 {
			records = records[:len(records)-1]
		}
		for _, rec := range records {
			if columns == 0 {
				columns = len(rec)
			}
			if len(rec) != columns {
				return nil, operation.InvalidArgument("%s: row has %d columns, expected %d", path, len(rec), columns)
			}
		}
		rows += len(records)
		logger.Debug("Table file read.", "path", path, "rows", len(records))
	}

	headerVal := cty.ListValEmpty(cty.String)
	if len(header) > 0 {
		headerVal = cty.ListVal(header)
	}
	return cty.ObjectVal(map[string]cty.Value{
		"shape":  cty.TupleVal([]cty.Value{cty.NumberIntVal(int64(rows)), cty.NumberIntVal(int64(columns)), cty.NumberIntVal(1)}),
		"header": headerVal,
		"files":  cty.NumberIntVal(int64(len(in.Files))),
	}), nil
}

func readRecords(path string, delim rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, operation.FailedPrecondition("file %s does not exist", path)
		}
		return nil, operation.Internal(fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, operation.InvalidArgument("%s: %v", path, err)
		}
		records = append(records, rec)
	}
}

// CategoricalArgs are the arguments of to categorical.
type CategoricalArgs struct {
	X          cty.Value `cty:"x"`
	NumClasses int64     `cty:"num_classes"`
}

// ToCategorical turns a class vector of n samples into an n x num_classes
// matrix.
func ToCategorical(_ context.Context, in *CategoricalArgs, _ []cty.Value) (any, error) {
	if in.NumClasses <= 0 {
		return nil, operation.InvalidArgument("num_classes must be positive, got %d", in.NumClasses)
	}
	if in.X.IsNull() {
		return nil, operation.FailedPrecondition("x is not linked")
	}
	shape := in.X
	if shape.Type().IsObjectType() && shape.Type().HasAttribute("shape") {
		shape = shape.GetAttr("shape")
	}
	if shape.IsNull() || !(shape.Type().IsTupleType() || shape.Type().IsListType()) || shape.LengthInt() == 0 {
		return nil, operation.InvalidArgument("x does not describe a shaped dataset")
	}
	samples := shape.Index(cty.NumberIntVal(0))
	return cty.ObjectVal(map[string]cty.Value{
		"shape":       cty.TupleVal([]cty.Value{samples, cty.NumberIntVal(in.NumClasses)}),
		"num_classes": cty.NumberIntVal(in.NumClasses),
	}), nil
}
