package v3d

import (
	"math"
	"sort"
	"strings"
)

const (
	// OverallScoreColumn holds the overall Gait Profile Score.
	OverallScoreColumn = "Overall_GPS_mean_MEAN"
	// MetricScoreSuffix marks per-metric Gait Variable Score columns.
	MetricScoreSuffix = "_gvs_MEDIAN"

	profileDataRow = HeaderRows
)

var sideScoreColumns = []string{"Left_GPS_mean_MEAN", "Right_GPS_mean_MEAN"}

// ParseGaitProfile extracts the overall score and the per-metric left/right
// score table. Row 0 holds the column names; the aggregate values sit on the
// first row after the label rows. Metrics are relabelled and ordered by
// labels; metrics without a label keep their raw name and follow in lexical order.
func ParseGaitProfile(t *RawTable, labels []MetricLabel) (GaitProfile, error) {
	if t == nil {
		return GaitProfile{}, malformedTable("", "nil table")
	}
	if len(t.Rows) <= profileDataRow {
		return GaitProfile{}, malformedTable(t.Name, "%d rows, want at least %d", len(t.Rows), profileDataRow+1)
	}

	var columns []string
	values := make(map[string]float64)
	for j := 1; j < len(t.Header); j++ {
		name := strings.TrimSpace(t.Cell(0, j))
		if name == "" {
			continue
		}
		if _, dup := values[name]; !dup {
			columns = append(columns, name)
		}
		values[name] = parseCell(t.Cell(profileDataRow, j))
	}

	profile := GaitProfile{Overall: math.NaN()}
	if v, ok := values[OverallScoreColumn]; ok {
		profile.Overall = v
	}

	selected := make([]string, 0, len(columns))
	for _, c := range sideScoreColumns {
		if _, ok := values[c]; ok {
			selected = append(selected, c)
		}
	}
	for _, c := range columns {
		if strings.HasSuffix(c, MetricScoreSuffix) {
			selected = append(selected, c)
		}
	}

	byMetric := make(map[string]*MetricScore)
	for _, c := range selected {
		side, metric := splitSide(c)
		if side != "Left" && side != "Right" {
			continue
		}
		s, ok := byMetric[metric]
		if !ok {
			s = &MetricScore{Metric: metric, Left: math.NaN(), Right: math.NaN()}
			byMetric[metric] = s
		}
		if side == "Left" {
			s.Left = values[c]
		} else {
			s.Right = values[c]
		}
	}

	for _, l := range labels {
		if s, ok := byMetric[l.Code]; ok {
			out := *s
			out.Metric = l.Label
			profile.Metrics = append(profile.Metrics, out)
			delete(byMetric, l.Code)
		}
	}
	rest := make([]string, 0, len(byMetric))
	for k := range byMetric {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, k := range rest {
		profile.Metrics = append(profile.Metrics, *byMetric[k])
	}
	return profile, nil
}

// splitSide splits "Left_Hip Angles_X_gvs_MEDIAN" on the first "_" and
// anything else on the first space.
func splitSide(column string) (side, metric string) {
	if strings.HasPrefix(column, "Left_") || strings.HasPrefix(column, "Right_") {
		side, metric, _ = strings.Cut(column, "_")
		return side, metric
	}
	side, metric, _ = strings.Cut(column, " ")
	return side, metric
}
