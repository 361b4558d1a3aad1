package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/SAP-F-2025/exam-trainer-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seededChooser(seed uint64) Chooser {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).IntN
}

func failingChooser(t *testing.T) Chooser {
	return func(n int) int {
		t.Fatalf("chooser must not be called, got n=%d", n)
		return 0
	}
}

func listeningContent() *fakeContent {
	return newFakeContent().
		with(models.ExamTypeListening, 1, catalogOf("l1-a", "l1-b", "l1-c")).
		with(models.ExamTypeListening, 2, catalogOf("l2-a", "l2-b")).
		with(models.ExamTypeListening, 3, catalogOf("l3-a", "l3-b")).
		with(models.ExamTypeListening, 4, catalogOf("l4-a"))
}

func TestExamAssembler_NeverSelectsCompletedInstances(t *testing.T) {
	ctx := context.Background()
	completed := setOf("l1-a", "l1-c", "l2-b", "l3-a")

	for seed := uint64(0); seed < 50; seed++ {
		assembler := NewExamAssembler(listeningContent(), models.DefaultExamLayout(), seededChooser(seed), testLogger())

		assembly, err := assembler.Assemble(ctx, models.ExamTypeListening, completed)
		require.NoError(t, err)
		require.Equal(t, models.ExamStatusReady, assembly.Status)

		for _, inst := range assembly.Parts {
			assert.NotContains(t, completed, inst.ID, "seed %d selected a completed instance", seed)
		}
		// Only one fresh instance is left in parts 1, 2 and 3.
		assert.Equal(t, "l1-b", assembly.Parts[0].ID)
		assert.Equal(t, "l2-a", assembly.Parts[1].ID)
		assert.Equal(t, "l3-b", assembly.Parts[2].ID)
	}
}

func TestExamAssembler_OneInstancePerPartInOrder(t *testing.T) {
	content := newFakeContent()
	for part := 1; part <= 5; part++ {
		content.with(models.ExamTypeReading, part, catalogOf(fmt.Sprintf("r%d-x", part), fmt.Sprintf("r%d-y", part)))
	}
	// Configured out of order; parts are still assembled ascending.
	layout := models.ExamLayout{models.ExamTypeReading: {5, 3, 1, 4, 2}}

	assembler := NewExamAssembler(content, layout, seededChooser(7), testLogger())
	assembly, err := assembler.Assemble(context.Background(), models.ExamTypeReading, setOf())
	require.NoError(t, err)

	require.Len(t, assembly.Parts, 5)
	for i, inst := range assembly.Parts {
		part := models.PartResult{PartID: inst.ID}
		number, ok := part.PartNumber()
		require.True(t, ok)
		assert.Equal(t, i+1, number)
	}
}

func TestExamAssembler_ChooserIndexesSortedAvailableKeys(t *testing.T) {
	content := newFakeContent().with(models.ExamTypeListening, 1, models.Catalog{
		"key-c": instance("l1-c"),
		"key-a": instance("l1-a"),
		"key-b": instance("l1-b"),
	})
	layout := models.ExamLayout{models.ExamTypeListening: {1}}

	var seen []int
	chooser := func(n int) int {
		seen = append(seen, n)
		return n - 1
	}

	assembler := NewExamAssembler(content, layout, chooser, testLogger())
	assembly, err := assembler.Assemble(context.Background(), models.ExamTypeListening, setOf("l1-c"))
	require.NoError(t, err)

	assert.Equal(t, []int{2}, seen)
	require.Len(t, assembly.Parts, 1)
	assert.Equal(t, "l1-b", assembly.Parts[0].ID)
}

func TestExamAssembler_DeduplicatesByIDNotKey(t *testing.T) {
	// Two keys share one id; completing the id exhausts the part.
	content := newFakeContent().with(models.ExamTypeListening, 1, models.Catalog{
		"first":  instance("l1-a"),
		"second": instance("l1-a"),
	})
	layout := models.ExamLayout{models.ExamTypeListening: {1}}

	assembler := NewExamAssembler(content, layout, failingChooser(t), testLogger())
	assembly, err := assembler.Assemble(context.Background(), models.ExamTypeListening, setOf("l1-a"))
	require.NoError(t, err)
	assert.True(t, assembly.Exhausted())
}

func TestExamAssembler_ExhaustionShortCircuits(t *testing.T) {
	ctx := context.Background()
	content := new(MockContentRepository)
	content.On("LoadPart", mock.Anything, models.ExamTypeListening, 1).Return(catalogOf("l1-a", "l1-b"), nil)
	content.On("LoadPart", mock.Anything, models.ExamTypeListening, 2).Return(catalogOf("l2-a"), nil)

	assembler := NewExamAssembler(content, models.DefaultExamLayout(), failingChooser(t), testLogger())
	assembly, err := assembler.Assemble(ctx, models.ExamTypeListening, setOf("l2-a", "l1-a"))
	require.NoError(t, err)

	assert.Equal(t, models.ExamStatusAllCompleted, assembly.Status)
	assert.Equal(t, 2, assembly.ExhaustedPart)
	assert.Empty(t, assembly.Parts)
	content.AssertNotCalled(t, "LoadPart", mock.Anything, models.ExamTypeListening, 3)
	content.AssertNotCalled(t, "LoadPart", mock.Anything, models.ExamTypeListening, 4)
	content.AssertExpectations(t)
}

func TestExamAssembler_SinglePartExhaustsWholeExam(t *testing.T) {
	content := listeningContent()
	// Parts 1 to 3 still have fresh content; part 4 is used up.
	assembler := NewExamAssembler(content, models.DefaultExamLayout(), failingChooser(t), testLogger())

	assembly, err := assembler.Assemble(context.Background(), models.ExamTypeListening, setOf("l4-a"))
	require.NoError(t, err)
	assert.True(t, assembly.Exhausted())
	assert.Equal(t, 4, assembly.ExhaustedPart)
}

func TestExamAssembler_ContentUnavailable(t *testing.T) {
	ctx := context.Background()
	layout := models.ExamLayout{models.ExamTypeListening: {1, 2}}

	t.Run("missing bucket", func(t *testing.T) {
		content := newFakeContent().with(models.ExamTypeListening, 1, catalogOf("l1-a"))
		assembler := NewExamAssembler(content, layout, seededChooser(1), testLogger())

		_, err := assembler.Assemble(ctx, models.ExamTypeListening, setOf())
		require.Error(t, err)
		assert.True(t, IsContentUnavailable(err))
	})

	t.Run("empty bucket", func(t *testing.T) {
		content := newFakeContent().
			with(models.ExamTypeListening, 1, catalogOf("l1-a")).
			with(models.ExamTypeListening, 2, models.Catalog{})
		assembler := NewExamAssembler(content, layout, seededChooser(1), testLogger())

		_, err := assembler.Assemble(ctx, models.ExamTypeListening, setOf())
		require.Error(t, err)
		assert.True(t, IsContentUnavailable(err))
	})

	t.Run("unexpected load error", func(t *testing.T) {
		content := new(MockContentRepository)
		content.On("LoadPart", mock.Anything, models.ExamTypeListening, 1).Return(nil, errors.New("disk on fire"))
		assembler := NewExamAssembler(content, layout, seededChooser(1), testLogger())

		_, err := assembler.Assemble(ctx, models.ExamTypeListening, setOf())
		require.Error(t, err)
		assert.True(t, IsContentUnavailable(err))
		content.AssertNotCalled(t, "LoadPart", mock.Anything, models.ExamTypeListening, 2)
	})
}

func TestExamAssembler_UnknownExamType(t *testing.T) {
	assembler := NewExamAssembler(newFakeContent(), models.DefaultExamLayout(), nil, testLogger())

	_, err := assembler.Assemble(context.Background(), models.ExamType("speaking"), setOf())
	assert.ErrorIs(t, err, ErrUnknownExamType)
	assert.True(t, IsValidation(err))
}
