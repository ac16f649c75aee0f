package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/archmap-dev/archmap/internal/fileutil"
	"github.com/archmap-dev/archmap/internal/model"
	"github.com/archmap-dev/archmap/internal/pipeline"
)

// ExportArtifact is the serializable form of one laid-out artifact.
type ExportArtifact struct {
	Name          string           `json:"name" yaml:"name"`
	Kind          string           `json:"kind" yaml:"kind"`
	LinesOfCode   int              `json:"linesOfCode" yaml:"linesOfCode"`
	ComponentRank int              `json:"componentRank" yaml:"componentRank"`
	SCCIndex      int              `json:"sccIndex" yaml:"sccIndex"`
	InCycle       bool             `json:"inCycle,omitempty" yaml:"inCycle,omitempty"`
	Frame         model.Rect       `json:"frame" yaml:"frame"`
	ContentFrame  model.Rect       `json:"contentFrame" yaml:"contentFrame"`
	ShowsParts    bool             `json:"showsParts" yaml:"showsParts"`
	DependsOn     []string         `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	Parts         []ExportArtifact `json:"parts,omitempty" yaml:"parts,omitempty"`
}

// ExportModel is the document written by --format json/yaml.
type ExportModel struct {
	Root ExportArtifact     `json:"root" yaml:"root"`
	View pipeline.ViewModel `json:"view" yaml:"view"`
}

func writeResult(cmd *cobra.Command, result *pipeline.Result, format, outPath string) error {
	switch format {
	case "text", "":
		printSummary(cmd, result)
		return nil
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want text, json, or yaml)", format)
	}

	doc := ExportModel{
		Root: exportArtifact(result.Tree, result.Tree.Root()),
		View: result.View,
	}
	var data []byte
	var err error
	if format == "json" {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return err
	}

	if outPath != "" {
		return fileutil.WriteIfChanged(outPath, append(data, '\n'))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func exportArtifact(tree *model.Tree, id model.ID) ExportArtifact {
	a := tree.Get(id)
	out := ExportArtifact{
		Name:          a.Name,
		Kind:          a.Kind.String(),
		LinesOfCode:   a.Metrics.LinesOfCode,
		ComponentRank: a.Metrics.ComponentRank,
		SCCIndex:      a.Metrics.SCCIndex,
		InCycle:       a.Metrics.InCycle,
		Frame:         a.Metrics.Frame,
		ContentFrame:  a.Metrics.ContentFrame,
		ShowsParts:    a.Metrics.ShowsParts,
	}
	for _, child := range a.Children() {
		part := exportArtifact(tree, child)
		// sibling dependencies, recorded on the dependent side by name
		for _, succ := range a.Graph.Successors(child) {
			part.DependsOn = append(part.DependsOn, tree.Get(succ).Name)
		}
		out.Parts = append(out.Parts, part)
	}
	return out
}

func printSummary(cmd *cobra.Command, result *pipeline.Result) {
	view := result.View
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d artifacts (%d folders, %d files, %d symbols), %d edges, %d in cycles\n",
		view.RootName, view.Artifacts, view.Folders, view.Files, view.Symbols, view.Edges, view.InCycles)

	tree := result.Tree
	root := tree.Get(tree.Root())
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Part", "Kind", "LoC", "Component", "Order", "Cycle"})
	table.SetBorder(false)
	for _, child := range root.Children() {
		a := tree.Get(child)
		table.Append([]string{
			a.Name,
			a.Kind.String(),
			strconv.Itoa(a.Metrics.LinesOfCode),
			strconv.Itoa(a.Metrics.ComponentRank),
			strconv.Itoa(a.Metrics.SCCIndex),
			strconv.FormatBool(a.Metrics.InCycle),
		})
	}
	table.Render()
}
