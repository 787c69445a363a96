package domain

// Column headers required in every slot inventory sheet.
const (
	ColumnHeight = "Altura"
	ColumnStatus = "Estado Contentor"
)

// Container status values as they appear in the WMS export after cleaning.
const (
	StatusStored    = "Armazenado"
	StatusOutside   = "Fora do Armazém"
	StatusInTransit = "Em Trânsito"
)

// Slot heights in meters. These are the only two heights the warehouse
// racks accept; rows with any other height are dropped during load.
const (
	Height075 = 0.75
	Height150 = 1.50
)

// HeightLabel returns the display form of a slot height ("0.75", "1.50").
func HeightLabel(height float64) string {
	switch height {
	case Height075:
		return "0.75"
	case Height150:
		return "1.50"
	default:
		return ""
	}
}

// SlotRecord is one cleaned inventory row. Height and Status hold the
// normalized values of the two required columns; Cells holds every kept
// column's raw value, parallel to SlotTable.Columns.
type SlotRecord struct {
	Height float64  `json:"height"`
	Status string   `json:"status"`
	Cells  []string `json:"cells"`
}

// SlotTable is the cleaned first sheet of an inventory workbook.
// Tables are immutable after load; the parse cache and the report store
// share them by pointer.
type SlotTable struct {
	Columns []string     `json:"columns"`
	Rows    []SlotRecord `json:"rows"`
}

// ColumnIndex returns the position of a named column, or -1.
func (t *SlotTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
