package v3d

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildKeyValueTable lays keys on row 0 and values on row 4 behind an index column.
func buildKeyValueTable(name string, keys, values []string) *RawTable {
	header := make([]string, len(keys)+1)
	t := &RawTable{Name: name, Header: header}
	for r := 0; r <= metadataValueRow; r++ {
		row := make([]string, len(keys)+1)
		row[0] = "ITEM"
		switch r {
		case metadataKeyRow:
			copy(row[1:], keys)
		case metadataValueRow:
			copy(row[1:], values)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestParseMetadataSplitsFolderName(t *testing.T) {
	raw := buildKeyValueTable("Info.txt",
		[]string{"First Name", "Last Name", "Folder Name", "Creation date"},
		[]string{"Ada", "Lovelace", `C:\Data\Lab\Session1_Barefoot`, "2024-03-01"},
	)
	m, err := ParseMetadata(raw)
	if err != nil {
		t.Fatalf("ParseMetadata() error: %v", err)
	}
	want := []Field{
		{Key: "First Name", Value: "Ada"},
		{Key: "Last Name", Value: "Lovelace"},
		{Key: "Creation date", Value: "2024-03-01"},
		{Key: "Subsession", Value: "Session1"},
		{Key: "Test condition", Value: "Barefoot"},
	}
	if diff := cmp.Diff(want, m.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	title, err := m.Title()
	if err != nil {
		t.Fatalf("Title() error: %v", err)
	}
	if title != "Ada Lovelace, 2024-03-01, Barefoot" {
		t.Fatalf("title = %q", title)
	}
}

func TestParseMetadataFolderVariants(t *testing.T) {
	cases := []struct {
		folder        string
		subsession    string
		condition     string
		wantCondition bool
	}{
		{"/data/lab/S2_Shod/", "S2", "Shod", true},
		{"S3_Orthosis_Left", "S3", "Orthosis_Left", true},
		{`D:\only`, "only", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.folder, func(t *testing.T) {
			m, err := ParseMetadata(buildKeyValueTable("Info.txt", []string{"Folder Name"}, []string{tc.folder}))
			if err != nil {
				t.Fatalf("ParseMetadata() error: %v", err)
			}
			if v, _ := m.Get("Subsession"); v != tc.subsession {
				t.Fatalf("subsession = %q, want %q", v, tc.subsession)
			}
			v, ok := m.Get("Test condition")
			if ok != tc.wantCondition || v != tc.condition {
				t.Fatalf("condition = %q (%v), want %q (%v)", v, ok, tc.condition, tc.wantCondition)
			}
			if _, ok := m.Get("Folder Name"); ok {
				t.Fatalf("Folder Name should be removed")
			}
		})
	}
}

func TestMetadataTitleMissingField(t *testing.T) {
	m, err := ParseMetadata(buildKeyValueTable("Info.txt", []string{"First Name", "Last Name"}, []string{"Ada", "Lovelace"}))
	if err != nil {
		t.Fatalf("ParseMetadata() error: %v", err)
	}
	_, err = m.Title()
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("Title() error = %v, want ErrMissingField", err)
	}
	var mf *MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "Creation date" {
		t.Fatalf("missing field = %+v", mf)
	}
}

func TestParseMetadataTooFewRows(t *testing.T) {
	raw := &RawTable{Name: "Info.txt", Header: []string{"", "a"}, Rows: [][]string{{"", "a"}, {"", "b"}}}
	if _, err := ParseMetadata(raw); !errors.Is(err, ErrMalformedTable) {
		t.Fatalf("error = %v, want ErrMalformedTable", err)
	}
}

func TestParseTemporalSpatial(t *testing.T) {
	raw := buildKeyValueTable("Temporal Distance.txt",
		[]string{
			"Speed", "Left_Steps_Per_Minute_Mean", "Right_Steps_Per_Minute_Mean", "Cycle_Time_Mean",
			"Stride_Length_Mean", "Left_Step_Length_Mean", "Right_Step_Length_Mean",
			"Left_Stance_Time_Mean", "Left_Cycle_Time_Mean", "Right_Stance_Time_Mean", "Right_Cycle_Time_Mean",
		},
		[]string{"1.234", "110", "112", "1.08", "1.31", "0.651", "0.6549", "0.65", "1.0", "0.62", "1.0"},
	)
	ts, err := ParseTemporalSpatial(raw)
	if err != nil {
		t.Fatalf("ParseTemporalSpatial() error: %v", err)
	}
	if len(ts.Rows) != 9 {
		t.Fatalf("rows = %d, want 9", len(ts.Rows))
	}
	byName := make(map[string]TemporalSpatialRow)
	for _, r := range ts.Rows {
		byName[r.Parameter] = r
	}
	if got := byName["Speed, m/s"].Both; got != 1.23 {
		t.Fatalf("speed = %v", got)
	}
	if got := byName["Cadence, steps/min"].Both; got != 111 {
		t.Fatalf("cadence = %v", got)
	}
	if got := byName["Stride Length, cm"].Both; got != 131 {
		t.Fatalf("stride length = %v", got)
	}
	step := byName["Step Length, cm"]
	if step.Left != 65 || step.Right != 65 || !math.IsNaN(step.Both) {
		t.Fatalf("step length = %+v", step)
	}
	stance := byName["Stance, %"]
	if stance.Left != 65 || stance.Right != 62 {
		t.Fatalf("stance = %+v", stance)
	}
	if got := byName["Stride Width, cm"].Both; !math.IsNaN(got) {
		t.Fatalf("absent stride width = %v, want NaN", got)
	}
}
