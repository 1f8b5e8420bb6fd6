package main

import (
	"birdsong-lab/classifier"
	"birdsong-lab/domain"
	"birdsong-lab/repositories"
	"birdsong-lab/runtime"
	stdErrors "errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

var (
	okStyle   = color.New(color.FgGreen, color.OpBold)
	failStyle = color.New(color.FgRed, color.OpBold)
	headStyle = color.New(color.FgCyan)
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func printValidation(w io.Writer, phase domain.Phase, tasks int, err error) {
	if err == nil {
		fmt.Fprintf(w, "%s %s: %d task(s)\n", okStyle.Render("OK"), phase, tasks)
		return
	}
	fmt.Fprintf(w, "%s %s\n", failStyle.Render("INVALID"), phase)
	for _, line := range violations(err) {
		fmt.Fprintf(w, "  - %s\n", line)
	}
}

// violations flattens joined and batched errors to one line each.
func violations(err error) []string {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range multi.Unwrap() {
			out = append(out, violations(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

func printReport(w io.Writer, report *runtime.Report) {
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("%s run %s", report.Phase, report.RunID)))
	table := newTable(w, "#", "Bird", "Status", "Output")
	for _, it := range report.Items {
		status, output := okStyle.Render("done"), it.Output
		if it.Err != nil {
			status, output = failStyle.Render("failed"), firstLine(it.Err)
		}
		table.Append([]string{strconv.Itoa(it.Index), it.BirdID, status, output})
	}
	table.Render()
}

func firstLine(err error) string {
	var joined interface{ Unwrap() []error }
	if stdErrors.As(err, &joined) && len(joined.Unwrap()) > 1 {
		return fmt.Sprintf("%s (+%d more)", joined.Unwrap()[0], len(joined.Unwrap())-1)
	}
	return strings.SplitN(err.Error(), "\n", 2)[0]
}

func printDataset(w io.Writer, path string, ds *domain.FeatureDataset) {
	fmt.Fprintln(w, headStyle.Render(path))
	info := newTable(w, "Field", "Value")
	info.AppendBulk([][]string{
		{"bird_ID", ds.BirdID},
		{"file_format", string(ds.FileFormat)},
		{"labelset", strings.Join(ds.Labelset, "")},
		{"feature groups", strings.Join(ds.FeatureGroups, ", ")},
		{"columns", strconv.Itoa(ds.Width())},
		{"sample rate", strconv.Itoa(ds.SampleRate)},
		{"rows", strconv.Itoa(len(ds.Vectors))},
		{"warnings", strconv.Itoa(len(ds.Warnings))},
		{"created", ds.CreatedAt.Format(time.RFC3339)},
	})
	info.Render()

	counts := ds.CountByLabel()
	labels := lo.Keys(counts)
	sort.Strings(labels)
	table := newTable(w, "Label", "Rows")
	for _, l := range labels {
		name := l
		if name == "" {
			name = "(unlabelled)"
		}
		table.Append([]string{name, strconv.Itoa(counts[l])})
	}
	table.Render()
}

func printModel(w io.Writer, path string) error {
	m, err := classifier.Load(path)
	if err != nil {
		return err
	}
	keys := lo.Keys(m.Hyperparameters)
	sort.Strings(keys)
	hyper := lo.Map(keys, func(k string, _ int) string { return fmt.Sprintf("%s=%v", k, m.Hyperparameters[k]) })

	fmt.Fprintln(w, headStyle.Render(path))
	table := newTable(w, "Field", "Value")
	table.AppendBulk([][]string{
		{"model", string(m.Kind)},
		{"feature group", m.FeatureGroup},
		{"hyperparameters", strings.Join(hyper, ", ")},
		{"columns", strconv.Itoa(len(m.Columns))},
		{"classes", strings.Join(m.Classes, ", ")},
		{"trained on", m.Extraction.BirdID},
		{"sample rate", strconv.Itoa(m.Extraction.SampleRate)},
		{"created", m.CreatedAt.Format(time.RFC3339)},
	})
	table.Render()
	return nil
}

func printRuns(w io.Writer, runs []repositories.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No run recorded yet.")
		return
	}
	table := newTable(w, "Run", "Phase", "Config", "Started", "Duration", "Tasks", "Failed")
	for _, r := range runs {
		failed := strconv.Itoa(r.Failed())
		if r.Failed() > 0 {
			failed = failStyle.Render(failed)
		}
		table.Append([]string{
			r.ID.String()[:8],
			string(r.Phase),
			r.ConfigFile,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			strconv.Itoa(len(r.Items)),
			failed,
		})
	}
	table.Render()
}
