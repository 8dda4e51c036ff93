package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJustification_UnmarshalJSON(t *testing.T) {
	t.Run("list of points", func(t *testing.T) {
		var j Justification
		require.NoError(t, json.Unmarshal([]byte(`["A", "B"]`), &j))

		assert.True(t, j.IsList())
		assert.Equal(t, []string{"A", "B"}, j.Points)
	})

	t.Run("single text block", func(t *testing.T) {
		var j Justification
		require.NoError(t, json.Unmarshal([]byte(`"A\nB"`), &j))

		assert.False(t, j.IsList())
		assert.Equal(t, "A\nB", j.Text)
	})

	t.Run("null", func(t *testing.T) {
		var j Justification
		require.NoError(t, json.Unmarshal([]byte(`null`), &j))

		assert.False(t, j.IsList())
		assert.Empty(t, j.Text)
	})

	t.Run("object is rejected", func(t *testing.T) {
		var j Justification
		assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &j))
	})

	t.Run("list with non-strings is rejected", func(t *testing.T) {
		var j Justification
		assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &j))
	})
}

func TestJustification_MarshalKeepsShape(t *testing.T) {
	list, err := json.Marshal(JustificationPoints("A", "B"))
	require.NoError(t, err)
	assert.JSONEq(t, `["A","B"]`, string(list))

	empty, err := json.Marshal(JustificationPoints())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(empty))

	text, err := json.Marshal(JustificationText("A\nB"))
	require.NoError(t, err)
	assert.JSONEq(t, `"A\nB"`, string(text))
}

func TestJustification_Append(t *testing.T) {
	original := JustificationPoints("A")
	list := original.Append("note")
	assert.Equal(t, []string{"A", "note"}, list.Points)
	assert.Equal(t, []string{"A"}, original.Points)

	text := JustificationText("A").Append("note")
	assert.Equal(t, "A\n\nnote", text.Text)
	assert.False(t, text.IsList())
}

func TestConfidence_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Confidence
	}{
		{"85", 85},
		{"85.4", 85},
		{"85.5", 86},
		{"-3", 0},
		{"150", 100},
		{`"85"`, 85},
		{`"85%"`, 85},
		{`" 72.6 % "`, 73},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var c Confidence
			require.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, tt.want, c)
		})
	}

	var c Confidence
	assert.Error(t, json.Unmarshal([]byte(`"high"`), &c))
	assert.Error(t, json.Unmarshal([]byte(`"NaN"`), &c))
	assert.Error(t, json.Unmarshal([]byte(`true`), &c))
}

func TestAnalysisResult_DecodeWithoutCategories(t *testing.T) {
	body := `{
		"id": "abc123",
		"original_filename": "cv.pdf",
		"timestamp": "2024-05-01T10:00:00",
		"result": {
			"decision": "PASS",
			"confidence": 80,
			"justification": "Solid",
			"strengths": ["a"],
			"improvement_areas": []
		}
	}`

	var r AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	assert.Equal(t, "abc123", r.ID)
	assert.True(t, r.Result.Passed())
	assert.False(t, r.Result.HasCategoryAssessments())
	assert.Equal(t, "Solid", r.Result.Justification.Text)
}

func TestAnalysis_ToResult(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := &Analysis{
		ID:               id,
		OriginalFilename: "cv.txt",
		CreatedAt:        created,
		Result:           AnalysisReport{Decision: DecisionFail, Confidence: 40},
	}

	r := a.ToResult()

	assert.Equal(t, id.String(), r.ID)
	assert.Equal(t, "cv.txt", r.OriginalFilename)
	assert.Equal(t, "2024-05-01T10:00:00Z", r.Timestamp)
	assert.Equal(t, DecisionFail, r.Result.Decision)
}
