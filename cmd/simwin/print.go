package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/SimWindows/simwin-sub002/pkg/analysis"
	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/util"
)

var terminalUnits = map[string]string{
	analysis.KeyCurrent:     "A/cm2",
	analysis.KeyTemperature: "K",
	analysis.KeyPowerLeft:   "W/cm2",
	analysis.KeyPowerRight:  "W/cm2",
}

func terminalNames(results map[string][]float64) []string {
	names := make([]string, 0, len(terminalUnits))
	for name := range terminalUnits {
		if _, ok := results[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// printTerminals prints one line per bias point.
func printTerminals(w io.Writer, results map[string][]float64) {
	biases := results[analysis.KeyBias]
	names := terminalNames(results)

	for i, v := range biases {
		fmt.Fprintf(w, "V=%-9s ", util.FormatBias(v))
		for _, name := range names {
			values := results[name]
			if i < len(values) {
				fmt.Fprintf(w, " %s=%s", name, util.FormatValueFactor(values[i], terminalUnits[name]))
			}
		}
		fmt.Fprintln(w)
	}
}

// printProfile prints the node profiles as a table, one row per node.
func printProfile(w io.Writer, results map[string][]float64) {
	var columns []string
	for _, f := range node.Flags() {
		if _, ok := results[f.String()]; ok {
			columns = append(columns, f.String())
		}
	}
	if len(columns) == 0 {
		return
	}

	header := make([]string, len(columns))
	for i, name := range columns {
		header[i] = util.FormatHeader(name)
	}
	fmt.Fprintln(w, strings.Join(header, " "))

	rows := len(results[columns[0]])
	row := make([]string, len(columns))
	for i := range rows {
		for j, name := range columns {
			row[j] = util.FormatColumn(results[name][i])
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}
}
