package store

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/errors"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
)

// AppendQuizAttempt appends an attempt to the quiz's history. Attempts are
// append-only; rows are never updated or removed outside ClearAll.
func (s *Store) AppendQuizAttempt(quizID string, attempt *models.AttemptRecord) error {
	attempt.QuizID = quizID
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.AttemptedAt == 0 {
		attempt.AttemptedAt = time.Now().Unix()
	}

	breakdown, err := attempt.BreakdownJSON()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalid, "failed to encode attempt breakdown", err)
	}

	query := `
	INSERT INTO quiz_attempts (id, quiz_id, attempted_at, score, time_spent, answers_correct, total_questions, breakdown)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, attempt.ID, attempt.QuizID, attempt.AttemptedAt, attempt.Score,
		attempt.TimeSpent, attempt.AnswersCorrect, attempt.TotalQuestions, breakdown); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to append quiz attempt", err)
	}
	return nil
}

// ListQuizAttempts returns the attempt history for one quiz in insertion
// order, degrading to an empty list on storage failure.
func (s *Store) ListQuizAttempts(quizID string) []*models.AttemptRecord {
	query := `
	SELECT id, quiz_id, attempted_at, score, time_spent, answers_correct, total_questions, breakdown
	FROM quiz_attempts WHERE quiz_id = ? ORDER BY rowid
	`
	return s.scanAttempts(query, quizID)
}

// ListAllAttempts returns every recorded attempt in insertion order.
func (s *Store) ListAllAttempts() []*models.AttemptRecord {
	query := `
	SELECT id, quiz_id, attempted_at, score, time_spent, answers_correct, total_questions, breakdown
	FROM quiz_attempts ORDER BY rowid
	`
	return s.scanAttempts(query)
}

func (s *Store) scanAttempts(query string, args ...interface{}) []*models.AttemptRecord {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		logging.Error("failed to list quiz attempts", err, nil)
		return []*models.AttemptRecord{}
	}
	defer rows.Close()

	attempts := []*models.AttemptRecord{}
	for rows.Next() {
		var a models.AttemptRecord
		var breakdown []byte
		if err := rows.Scan(&a.ID, &a.QuizID, &a.AttemptedAt, &a.Score, &a.TimeSpent,
			&a.AnswersCorrect, &a.TotalQuestions, &breakdown); err != nil {
			logging.Error("failed to scan attempt row", err, nil)
			return []*models.AttemptRecord{}
		}
		if err := a.SetBreakdownJSON(breakdown); err != nil {
			logging.Error("failed to decode attempt breakdown", err, map[string]interface{}{"attempt_id": a.ID})
			return []*models.AttemptRecord{}
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		logging.Error("failed to iterate attempt rows", err, nil)
		return []*models.AttemptRecord{}
	}
	return attempts
}
