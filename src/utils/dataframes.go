package utils

//nolint:depguard
import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column is one named, typed column used to assemble a DataFrame.
type Column struct {
	Name   string
	Type   series.Type
	Values interface{}
}

func StringColumn(name string, values []string) Column {
	return Column{Name: name, Type: series.String, Values: values}
}

func FloatColumn(name string, values []float64) Column {
	return Column{Name: name, Type: series.Float, Values: values}
}

// NewDataFrame builds a frame from equally sized columns, in the given order.
func NewDataFrame(columns ...Column) (dataframe.DataFrame, error) {
	if len(columns) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("dataframe needs at least one column")
	}
	cols := make([]series.Series, len(columns))
	for i, c := range columns {
		cols[i] = series.New(c.Values, c.Type, c.Name)
		if cols[i].Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("column %s: %w", c.Name, cols[i].Err)
		}
	}
	df := dataframe.New(cols...)
	return df, df.Err
}

// WriteDataFrameCSV writes the frame with a header row.
func WriteDataFrameCSV(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}
