package v3d

import (
	"math"
	"strings"
)

const (
	metadataKeyRow   = 0
	metadataValueRow = 4

	folderNameKey    = "Folder Name"
	subsessionKey    = "Subsession"
	testConditionKey = "Test condition"
)

// TitleFields are the metadata fields a display title is built from.
var TitleFields = []string{"First Name", "Last Name", "Creation date", testConditionKey}

// ParseMetadata zips the label row with the value row of the session info export.
// A "Folder Name" entry is replaced by Subsession and Test condition taken
// from the last folder of the path ("<subsession>_<condition>").
func ParseMetadata(t *RawTable) (Metadata, error) {
	keys, values, err := keyValueRows(t)
	if err != nil {
		return Metadata{}, err
	}

	var m Metadata
	for i, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		m.put(k, strings.TrimSpace(values[i]))
	}

	for i, f := range m.Fields {
		if f.Key != folderNameKey {
			continue
		}
		m.Fields = append(m.Fields[:i:i], m.Fields[i+1:]...)
		subsession, condition, ok := splitFolder(f.Value)
		m.put(subsessionKey, subsession)
		if ok {
			m.put(testConditionKey, condition)
		}
		break
	}
	return m, nil
}

// put overwrites an existing key in place or appends a new one.
func (m *Metadata) put(k, v string) {
	for i := range m.Fields {
		if m.Fields[i].Key == k {
			m.Fields[i].Value = v
			return
		}
	}
	m.Fields = append(m.Fields, Field{Key: k, Value: v})
}

// Title returns "First Last, date, condition".
func (m Metadata) Title() (string, error) {
	parts := make([]string, len(TitleFields))
	for i, f := range TitleFields {
		v, ok := m.Get(f)
		if !ok {
			return "", &MissingFieldError{Field: f}
		}
		parts[i] = v
	}
	return parts[0] + " " + parts[1] + ", " + parts[2] + ", " + parts[3], nil
}

func splitFolder(path string) (subsession, condition string, ok bool) {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '\\' || r == '/' })
	if len(segments) == 0 {
		return "", "", false
	}
	last := segments[len(segments)-1]
	subsession, condition, ok = strings.Cut(last, "_")
	return subsession, condition, ok
}

// keyValueRows returns the label and value rows with the index column dropped.
func keyValueRows(t *RawTable) ([]string, []string, error) {
	if t == nil {
		return nil, nil, malformedTable("", "nil table")
	}
	if len(t.Rows) <= metadataValueRow {
		return nil, nil, malformedTable(t.Name, "%d rows, want at least %d", len(t.Rows), metadataValueRow+1)
	}
	n := len(t.Header)
	keys := make([]string, 0, n)
	values := make([]string, 0, n)
	for j := 1; j < n; j++ {
		keys = append(keys, t.Cell(metadataKeyRow, j))
		values = append(values, t.Cell(metadataValueRow, j))
	}
	return keys, values, nil
}

// ParseTemporalSpatial derives the temporal-spatial table from the
// temporal distance export. Source keys that are absent yield missing cells.
func ParseTemporalSpatial(t *RawTable) (TemporalSpatial, error) {
	keys, values, err := keyValueRows(t)
	if err != nil {
		return TemporalSpatial{}, err
	}
	raw := make(map[string]float64, len(keys))
	for i, k := range keys {
		raw[strings.TrimSpace(k)] = parseCell(values[i])
	}
	get := func(k string) float64 {
		if v, ok := raw[k]; ok {
			return v
		}
		return math.NaN()
	}

	nan := math.NaN()
	both := func(name string, v float64) TemporalSpatialRow {
		return TemporalSpatialRow{Parameter: name, Both: v, Left: nan, Right: nan}
	}
	sides := func(name string, l, r float64) TemporalSpatialRow {
		return TemporalSpatialRow{Parameter: name, Both: nan, Left: l, Right: r}
	}

	return TemporalSpatial{Rows: []TemporalSpatialRow{
		both("Speed, m/s", round(get("Speed"), 2)),
		both("Cadence, steps/min", round((get("Left_Steps_Per_Minute_Mean")+get("Right_Steps_Per_Minute_Mean"))/2, 0)),
		both("Cycle Time, s", round(get("Cycle_Time_Mean"), 2)),
		both("Stride Length, cm", round(get("Stride_Length_Mean")*100, 0)),
		both("Stride Width, cm", round(get("Stride_Width_Mean")*100, 1)),
		sides("Step Length, cm",
			round(get("Left_Step_Length_Mean")*100, 0),
			round(get("Right_Step_Length_Mean")*100, 0)),
		sides("Step Time, s",
			round(get("Left_Step_Time_Mean"), 2),
			round(get("Right_Step_Time_Mean"), 2)),
		sides("Stance, %",
			round(get("Left_Stance_Time_Mean")/get("Left_Cycle_Time_Mean")*100, 1),
			round(get("Right_Stance_Time_Mean")/get("Right_Cycle_Time_Mean")*100, 1)),
		sides("Initial Double Limb Support, %",
			round(get("Right_Terminal_Double_Limb_Support_Time_Mean")/get("Left_Cycle_Time_Mean")*100, 1),
			round(get("Right_Initial_Double_Limb_Support_Time_Mean")/get("Right_Cycle_Time_Mean")*100, 1)),
	}}, nil
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
