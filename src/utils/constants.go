package utils

const DateTimeLayout = "2006-01-02 15:04:05"

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// ChartColors is the palette used for allocation charts.
var ChartColors = []string{
	"#ffa366", // Light Orange
	"#ff8080", // Light Red
	"#80b3ff", // Light Blue
	"#a3d977", // Light Green
	"#c285ff", // Light Purple
	"#80e6d4", // Light Teal
	"#ffb366", // Medium Orange
	"#ff6666", // Medium Red
	"#80b366", // Medium Green
	"#e680ff", // Light Magenta
	"#808080", // Medium Gray
	"#b3a3ff", // Light Slate Blue
	"#80d4cc", // Light Sea Green
}

// GetChartColor cycles through ChartColors.
func GetChartColor(index int) string {
	return ChartColors[index%len(ChartColors)]
}
