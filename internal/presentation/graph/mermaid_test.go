package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/aretw0/lattice/internal/testutils"
	"github.com/aretw0/lattice/pkg/jsgf"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, sources map[string]string) map[string]*compiler.DependencyGraph {
	t.Helper()
	graphs := make(map[string]*compiler.DependencyGraph)
	for name, src := range sources {
		g, err := jsgf.Parse(name, src)
		require.NoError(t, err)
		dg, err := compiler.Resolve(g)
		require.NoError(t, err)
		graphs[g.Name] = dg
	}
	return graphs
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		sources  map[string]string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:    "Root Rule Shape",
			sources: map[string]string{"GetTime": testutils.GetTime},
			contains: []string{
				"GetTime_GetTime((\"GetTime.GetTime\"))",
			},
		},
		{
			name: "Private Rule And Slot",
			sources: map[string]string{
				"Lights": "public <Lights> = <switch> light; <switch> = turn ($state){state};",
			},
			contains: []string{
				"Lights_switch[\"Lights.switch\"]",
				"slot_state[/\"$state\"/]",
				"Lights_Lights --> Lights_switch",
				"Lights_switch --> slot_state",
			},
		},
		{
			name: "Cross Grammar Reference",
			sources: map[string]string{
				"ChangeLight":      testutils.ChangeLight,
				"ChangeLightColor": testutils.ChangeLightColor,
			},
			contains: []string{
				"ChangeLight_ChangeLight -.-> ChangeLightColor_ChangeLightColor",
				"ChangeLightColor_ChangeLightColor((\"ChangeLightColor.ChangeLightColor\"))",
			},
			excludes: []string{
				"[[\"ChangeLightColor.ChangeLightColor\"]]",
			},
		},
		{
			name:    "Missing Grammar As Subroutine",
			sources: map[string]string{"ChangeLight": testutils.ChangeLight},
			contains: []string{
				"ChangeLightColor_ChangeLightColor[[\"ChangeLightColor.ChangeLightColor\"]]",
			},
		},
		{
			name:    "Failed Overlay",
			sources: map[string]string{"GetTime": testutils.GetTime},
			overlay: &graph.GraphOverlay{Failed: []string{"GetTime", "Unknown"}},
			contains: []string{
				"classDef failed",
				"class GetTime_GetTime failed;",
			},
			excludes: []string{
				"class Unknown_Unknown",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(resolve(t, tt.sources), tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}
