package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
		wantErr bool
	}{
		{
			name: "progress variant",
			payload: ProgressPayload(&ProgressRecord{
				ModuleID:   "mod-1",
				Completed:  true,
				TimeSpent:  120,
				VisitCount: 3,
			}),
			want: `{"module_id":"mod-1","last_accessed":0,"completed":true,"time_spent":120,"visit_count":3}`,
		},
		{
			name: "attempt variant",
			payload: AttemptPayload(&AttemptRecord{
				ID:             "att-1",
				QuizID:         "quiz-1",
				Score:          80,
				AnswersCorrect: 4,
				TotalQuestions: 5,
			}),
			want: `{"id":"att-1","quiz_id":"quiz-1","attempted_at":0,"score":80,"time_spent":0,"answers_correct":4,"total_questions":5,"breakdown":null}`,
		},
		{
			name:    "unknown type",
			payload: Payload{Type: EntryType("bogus")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestDecodePayload_RoundTrip(t *testing.T) {
	attempt := &AttemptRecord{
		ID:             "att-1",
		QuizID:         "quiz-1",
		Score:          60,
		AnswersCorrect: 3,
		TotalQuestions: 5,
		Breakdown: []QuestionResult{
			{QuestionID: "q1", Correct: true, TimeSpent: 12},
			{QuestionID: "q2", Correct: false, TimeSpent: 30},
		},
	}

	data, err := json.Marshal(AttemptPayload(attempt))
	require.NoError(t, err)

	decoded, err := DecodePayload(EntryQuizAttempt, data)
	require.NoError(t, err)
	require.NotNil(t, decoded.Attempt)
	assert.Equal(t, EntryQuizAttempt, decoded.Type)
	assert.Equal(t, attempt.Score, decoded.Attempt.Score)
	assert.Equal(t, attempt.Breakdown, decoded.Attempt.Breakdown)
	assert.Nil(t, decoded.Progress)
}

func TestDecodePayload_UnknownType(t *testing.T) {
	_, err := DecodePayload(EntryType("bogus"), []byte(`{}`))
	require.Error(t, err)
}

func TestQueueEntry_DecodedPayload(t *testing.T) {
	rec := &ProgressRecord{ModuleID: "mod-1", VisitCount: 2, TimeSpent: 45}
	data, err := json.Marshal(ProgressPayload(rec))
	require.NoError(t, err)

	entry := QueueEntry{
		ID:      "e1",
		Type:    EntryModuleProgress,
		Payload: data,
	}
	decoded, err := entry.DecodedPayload()
	require.NoError(t, err)
	require.NotNil(t, decoded.Progress)
	assert.Equal(t, "mod-1", decoded.Progress.ModuleID)
	assert.Equal(t, int64(45), decoded.Progress.TimeSpent)
}

func TestAttemptRecord_Percentage(t *testing.T) {
	tests := []struct {
		name    string
		attempt AttemptRecord
		want    float64
	}{
		{
			name:    "from breakdown counts",
			attempt: AttemptRecord{AnswersCorrect: 3, TotalQuestions: 4, Score: 99},
			want:    75,
		},
		{
			name:    "falls back to score without questions",
			attempt: AttemptRecord{Score: 80},
			want:    80,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.attempt.Percentage(), 0.001)
		})
	}
}

func TestCachedQuiz_QuestionsJSONRoundTrip(t *testing.T) {
	quiz := CachedQuiz{
		ID: "quiz-1",
		Questions: []QuizQuestion{
			{ID: "q1", Prompt: "2+2?", Options: []string{"3", "4"}, CorrectOption: 1, Explanation: "basic addition"},
		},
	}

	data, err := quiz.QuestionsJSON()
	require.NoError(t, err)

	var restored CachedQuiz
	require.NoError(t, restored.SetQuestionsJSON(data))
	assert.Equal(t, quiz.Questions, restored.Questions)
}
