package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/probelab/beliefd/internal/domain"
	"github.com/probelab/beliefd/internal/store"
)

func newTestModelService(t *testing.T) (*ModelService, *store.GraphStore) {
	t.Helper()
	dir := t.TempDir()
	models := store.NewModelStore(dir)
	graph := store.NewGraphStore(dir)
	return NewModelService(models, graph, zap.NewNop()), graph
}

func TestModelServiceCreateRequiresTitle(t *testing.T) {
	svc, _ := newTestModelService(t)
	_, err := svc.Create(context.Background(), CreateInput{})
	assert.ErrorIs(t, err, ErrModelTitleEmpty)
}

func TestModelServiceBeliefLifecycle(t *testing.T) {
	svc, _ := newTestModelService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{
		Title:       "Login retries on 5xx",
		Domain:      domain.DomainSoftwareQA,
		Confidence:  0.5,
		EvidenceIDs: []string{"obs-1"},
	})
	require.NoError(t, err)
	require.Len(t, m.UpdateHistory, 1)

	m, err = svc.Reinforce(ctx, m.ID, []string{"obs-2"}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, m.Confidence, 1e-9)
	require.Len(t, m.UpdateHistory, 2)
	assert.InDelta(t, 0.05, m.UpdateHistory[1].DeltaConfidence, 1e-9)
	assert.Contains(t, m.UpdateHistory[1].ChangeSummary, "reinforced by 1 evidence item(s)")

	m, err = svc.Challenge(ctx, m.ID, []string{"obs-3"}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.45, m.Confidence, 1e-9)
	require.Len(t, m.UpdateHistory, 3)
	assert.InDelta(t, -0.1, m.UpdateHistory[2].DeltaConfidence, 1e-9)

	assert.Equal(t, []string{"obs-1", "obs-2", "obs-3"}, m.EvidenceIDs)

	m, err = svc.Deprecate(ctx, m.ID, "superseded by narrower belief", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeprecated, m.Status)
	assert.Equal(t, "deprecated: superseded by narrower belief", m.UpdateHistory[3].ChangeSummary)
}

func TestModelServiceReinforceClampsAtOne(t *testing.T) {
	svc, _ := newTestModelService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Title: "Near certain", Confidence: 0.98})
	require.NoError(t, err)

	m, err = svc.Reinforce(ctx, m.ID, nil, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Confidence)
	assert.InDelta(t, 0.02, m.UpdateHistory[1].DeltaConfidence, 1e-9)
}

func TestModelServiceChallengeClampsAtZero(t *testing.T) {
	svc, _ := newTestModelService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Title: "Already shaky", Confidence: 0.05})
	require.NoError(t, err)

	m, err = svc.Challenge(ctx, m.ID, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Confidence)
}

func TestModelServiceUnknownModel(t *testing.T) {
	svc, _ := newTestModelService(t)
	ctx := context.Background()

	_, err := svc.Reinforce(ctx, uuid.New(), nil, 0)
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{ChangeSummary: "noop"})
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, err = svc.Deprecate(ctx, uuid.New(), "gone", nil)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestModelServiceCreateWithRelations(t *testing.T) {
	svc, graph := newTestModelService(t)
	ctx := context.Background()

	target, err := svc.Create(ctx, CreateInput{Title: "Session cookies expire hourly", Confidence: 0.7})
	require.NoError(t, err)

	m, err := svc.Create(ctx, CreateInput{
		Title:       "Login loops back to form",
		Confidence:  0.5,
		EvidenceIDs: []string{"obs-7"},
		Relations: []RelationInput{
			{TargetID: target.ID, Relation: domain.RelationDependsOn, Weight: 0.8},
		},
	})
	require.NoError(t, err)

	edges, err := graph.FindFromModel(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, target.ID, edges[0].ToModel)
	assert.Equal(t, domain.RelationDependsOn, edges[0].Relation)
	assert.Equal(t, 0.8, edges[0].Weight)
	assert.Equal(t, []string{"obs-7"}, edges[0].EvidenceIDs)
}

func TestModelServiceSkipsRelationToUnknownTarget(t *testing.T) {
	svc, graph := newTestModelService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{
		Title:      "Edge case belief",
		Confidence: 0.5,
		Relations: []RelationInput{
			{TargetID: uuid.New(), Relation: domain.RelationExplains, Weight: 0.5},
		},
	})
	require.NoError(t, err)

	edges, err := graph.FindFromModel(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestDecodeCreateInstruction(t *testing.T) {
	raw := []byte(`{
		"title": "Login retries on 5xx",
		"domain": "software_QA",
		"tags": ["login"],
		"confidence": 0.6,
		"evidence_ids": ["obs-1"]
	}`)

	in, err := DecodeCreateInstruction(raw)
	require.NoError(t, err)
	assert.Equal(t, "Login retries on 5xx", in.Title)
	assert.Equal(t, domain.DomainSoftwareQA, in.Domain)
	assert.Equal(t, 0.6, in.Confidence)
	assert.Equal(t, []string{"obs-1"}, in.EvidenceIDs)
}

func TestDecodeCreateInstructionDefaults(t *testing.T) {
	in, err := DecodeCreateInstruction([]byte(`{"title": "Minimal"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.DomainGeneral, in.Domain)
	assert.Equal(t, DefaultInitialConfidence, in.Confidence)

	// Unknown domains degrade to general, out-of-range confidence clamps.
	in, err = DecodeCreateInstruction([]byte(`{"title": "Odd", "domain": "astrology", "confidence": 3.5}`))
	require.NoError(t, err)
	assert.Equal(t, domain.DomainGeneral, in.Domain)
	assert.Equal(t, 1.0, in.Confidence)
}

func TestDecodeCreateInstructionFailures(t *testing.T) {
	_, err := DecodeCreateInstruction([]byte(`{"domain": "general"}`))
	assert.ErrorIs(t, err, ErrModelTitleEmpty)

	_, err = DecodeCreateInstruction([]byte(`{not json`))
	assert.Error(t, err)

	_, err = DecodeCreateInstruction([]byte(`{"title": "x", "relations": [{"target_id": "not-a-uuid", "relation": "depends_on"}]}`))
	assert.Error(t, err)

	_, err = DecodeCreateInstruction([]byte(`{"title": "x", "relations": [{"target_id": "` + uuid.NewString() + `", "relation": "causes"}]}`))
	assert.Error(t, err)
}

func TestDecodeUpdateInstruction(t *testing.T) {
	raw := []byte(`{
		"change_summary": "narrowed scope",
		"evidence_ids": ["obs-4"],
		"updates": {"confidence": 0.8, "status": "deprecated"}
	}`)

	in, err := DecodeUpdateInstruction(raw)
	require.NoError(t, err)
	assert.Equal(t, "narrowed scope", in.ChangeSummary)
	require.NotNil(t, in.Patch.Confidence)
	assert.Equal(t, 0.8, *in.Patch.Confidence)
	require.NotNil(t, in.Patch.Status)
	assert.Equal(t, domain.StatusDeprecated, *in.Patch.Status)
}

func TestDecodeUpdateInstructionDefaultsAndFailures(t *testing.T) {
	in, err := DecodeUpdateInstruction([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "updated", in.ChangeSummary)

	_, err = DecodeUpdateInstruction([]byte(`{"updates": {"status": "archived"}}`))
	assert.Error(t, err)

	_, err = DecodeUpdateInstruction([]byte(`not json`))
	assert.Error(t, err)
}
