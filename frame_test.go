package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanFrame_StageOrder(t *testing.T) {
	vm, err := validateModel(deferredModel(), 0)
	require.NoError(t, err)

	// Submit lighting before geometry; the plan must still run pass 0 first.
	steps := []RenderStep{
		{Pass: 1, Pipeline: 1, Draws: []Draw{{IndexCount: 3}}},
		{Pass: 0, Pipeline: 0, Draws: []Draw{{IndexCount: 36}}},
	}
	plan, dropped := planFrame(vm, steps)
	require.Empty(t, dropped)
	require.Len(t, plan, 2)

	assert.Equal(t, 0, plan[0].pass)
	assert.Len(t, plan[0].steps, 1)
	assert.Equal(t, uint32(36), plan[0].steps[0].Draws[0].IndexCount)

	assert.Equal(t, 1, plan[1].pass)
	assert.Len(t, plan[1].steps, 1)
}

func TestPlanFrame_EmptyPassesStillRun(t *testing.T) {
	vm, err := validateModel(deferredModel(), 0)
	require.NoError(t, err)

	plan, dropped := planFrame(vm, nil)
	assert.Empty(t, dropped)
	require.Len(t, plan, 2)
	assert.Empty(t, plan[0].steps)
	assert.Empty(t, plan[1].steps)
}

func TestPlanFrame_DropsForeignPipeline(t *testing.T) {
	vm, err := validateModel(deferredModel(), 0)
	require.NoError(t, err)

	steps := []RenderStep{
		{Pass: 0, Pipeline: 1}, // pipeline 1 belongs to pass 1
		{Pass: 0, Pipeline: 0},
	}
	plan, dropped := planFrame(vm, steps)
	require.Len(t, dropped, 1)
	assert.Equal(t, 1, dropped[0].Pipeline)
	assert.Len(t, plan[0].steps, 1)
	assert.Equal(t, 0, plan[0].steps[0].Pipeline)
}

func TestPlanFrame_DropsOutOfRange(t *testing.T) {
	vm, err := validateModel(deferredModel(), 0)
	require.NoError(t, err)

	steps := []RenderStep{
		{Pass: 7, Pipeline: 0},
		{Pass: 0, Pipeline: -1},
	}
	_, dropped := planFrame(vm, steps)
	assert.Len(t, dropped, 2)
}

func TestPlanFrame_DropsUnstagedPass(t *testing.T) {
	m := deferredModel()
	m.Pipelines = append(m.Pipelines, PipelineDecl{
		ShaderURI: "builtin://blit_color", VSEntry: "vs_main", FSEntry: "fs_main",
		Blends: []*BlendDecl{nil},
	})
	// Pass 2 owns pipeline 2 but is listed in no stage.
	m.Passes = append(m.Passes, PassDecl{
		Pipelines: []int{2},
		Colors:    []ColorAttachmentDecl{{Texture: 3, Store: true}},
	})
	vm, err := validateModel(m, 0)
	require.NoError(t, err)

	plan, dropped := planFrame(vm, []RenderStep{{Pass: 2, Pipeline: 2}})
	require.Len(t, dropped, 1)
	assert.Equal(t, 2, dropped[0].Pass)
	require.Len(t, plan, 2)
	assert.Empty(t, plan[0].steps)
	assert.Empty(t, plan[1].steps)
}

func TestPlanFrame_SubmissionOrderWithinPass(t *testing.T) {
	m := deferredModel()
	m.Pipelines = append(m.Pipelines, PipelineDecl{
		ShaderURI: "builtin://blit_color", VSEntry: "vs_main", FSEntry: "fs_main",
		Blends: []*BlendDecl{nil, nil}, DepthTest: true,
	})
	m.Passes[0].Pipelines = append(m.Passes[0].Pipelines, 2)
	vm, err := validateModel(m, 0)
	require.NoError(t, err)

	steps := []RenderStep{
		{Pass: 0, Pipeline: 2},
		{Pass: 0, Pipeline: 0},
		{Pass: 0, Pipeline: 2},
	}
	plan, dropped := planFrame(vm, steps)
	require.Empty(t, dropped)
	require.Len(t, plan[0].steps, 3)
	assert.Equal(t, 2, plan[0].steps[0].Pipeline)
	assert.Equal(t, 0, plan[0].steps[1].Pipeline)
	assert.Equal(t, 2, plan[0].steps[2].Pipeline)
}
