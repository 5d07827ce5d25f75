package salbp

import (
	"regexp"
	"strconv"
	"strings"
)

var stationLine = regexp.MustCompile(`(?i)^station_(\d+):\s*(.+)$`)

// ParseSolution reads reference-solution text, one "station_<n>: <ids...>"
// line per station. Stations keep the order of their lines; lines that do not
// match are ignored, so text without any station yields an empty, valid result.
func ParseSolution(text string) []Station {
	stations := []Station{}
	for _, line := range strings.Split(text, "\n") {
		m := stationLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		stations = append(stations, Station{ID: id, Tasks: strings.Fields(m[2])})
	}
	return stations
}

// FormatSolution writes stations in the format ParseSolution reads.
func FormatSolution(stations []Station) string {
	var b strings.Builder
	for _, s := range stations {
		b.WriteString("station_")
		b.WriteString(strconv.Itoa(s.ID))
		b.WriteString(":")
		for _, t := range s.Tasks {
			b.WriteString(" ")
			b.WriteString(t)
		}
		b.WriteString("\n")
	}
	return b.String()
}
