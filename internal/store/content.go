package store

import (
	"database/sql"
	"time"

	apperrors "github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/errors"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
)

// UpsertModule inserts the module or replaces the existing record with the
// same ID in place. The version counter increments on replacement and the
// collection's insertion order is untouched (conflict updates keep the rowid).
func (s *Store) UpsertModule(m *models.CachedModule) error {
	m.LastUpdated = time.Now().Unix()
	query := `
	INSERT INTO cached_modules (id, title, subject, content, version, last_updated)
	VALUES (?, ?, ?, ?, 1, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		subject = excluded.subject,
		content = excluded.content,
		version = cached_modules.version + 1,
		last_updated = excluded.last_updated
	`
	if _, err := s.db.Exec(query, m.ID, m.Title, m.Subject, m.Content, m.LastUpdated); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to upsert module", err)
	}
	// Re-read the stored version so the caller sees the post-write record.
	if err := s.db.QueryRow(`SELECT version FROM cached_modules WHERE id = ?`, m.ID).Scan(&m.Version); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to read module version", err)
	}
	return nil
}

// GetModule retrieves a cached module by ID.
func (s *Store) GetModule(id string) (*models.CachedModule, error) {
	query := `SELECT id, title, subject, content, version, last_updated FROM cached_modules WHERE id = ?`
	var m models.CachedModule
	err := s.db.QueryRow(query, id).Scan(&m.ID, &m.Title, &m.Subject, &m.Content, &m.Version, &m.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, "module not found: "+id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to get module", err)
	}
	return &m, nil
}

// ListModules returns every cached module in insertion order. A storage
// failure degrades to an empty list so offline reading never crashes the app.
func (s *Store) ListModules() []*models.CachedModule {
	query := `SELECT id, title, subject, content, version, last_updated FROM cached_modules ORDER BY rowid`
	rows, err := s.db.Query(query)
	if err != nil {
		logging.Error("failed to list modules", err, nil)
		return []*models.CachedModule{}
	}
	defer rows.Close()

	modules := []*models.CachedModule{}
	for rows.Next() {
		var m models.CachedModule
		if err := rows.Scan(&m.ID, &m.Title, &m.Subject, &m.Content, &m.Version, &m.LastUpdated); err != nil {
			logging.Error("failed to scan module row", err, nil)
			return []*models.CachedModule{}
		}
		modules = append(modules, &m)
	}
	if err := rows.Err(); err != nil {
		logging.Error("failed to iterate module rows", err, nil)
		return []*models.CachedModule{}
	}
	return modules
}

// UpsertQuiz inserts the quiz or replaces the existing record with the same
// ID in place, with the same versioning rules as UpsertModule.
func (s *Store) UpsertQuiz(q *models.CachedQuiz) error {
	questions, err := q.QuestionsJSON()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalid, "failed to encode quiz questions", err)
	}
	q.LastUpdated = time.Now().Unix()
	query := `
	INSERT INTO cached_quizzes (id, title, subject, questions, version, last_updated)
	VALUES (?, ?, ?, ?, 1, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		subject = excluded.subject,
		questions = excluded.questions,
		version = cached_quizzes.version + 1,
		last_updated = excluded.last_updated
	`
	if _, err := s.db.Exec(query, q.ID, q.Title, q.Subject, questions, q.LastUpdated); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to upsert quiz", err)
	}
	if err := s.db.QueryRow(`SELECT version FROM cached_quizzes WHERE id = ?`, q.ID).Scan(&q.Version); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to read quiz version", err)
	}
	return nil
}

// GetQuiz retrieves a cached quiz by ID.
func (s *Store) GetQuiz(id string) (*models.CachedQuiz, error) {
	query := `SELECT id, title, subject, questions, version, last_updated FROM cached_quizzes WHERE id = ?`
	var q models.CachedQuiz
	var questions []byte
	err := s.db.QueryRow(query, id).Scan(&q.ID, &q.Title, &q.Subject, &questions, &q.Version, &q.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, "quiz not found: "+id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to get quiz", err)
	}
	if err := q.SetQuestionsJSON(questions); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to decode quiz questions", err)
	}
	return &q, nil
}

// ListQuizzes returns every cached quiz in insertion order, degrading to an
// empty list on storage failure.
func (s *Store) ListQuizzes() []*models.CachedQuiz {
	query := `SELECT id, title, subject, questions, version, last_updated FROM cached_quizzes ORDER BY rowid`
	rows, err := s.db.Query(query)
	if err != nil {
		logging.Error("failed to list quizzes", err, nil)
		return []*models.CachedQuiz{}
	}
	defer rows.Close()

	quizzes := []*models.CachedQuiz{}
	for rows.Next() {
		var q models.CachedQuiz
		var questions []byte
		if err := rows.Scan(&q.ID, &q.Title, &q.Subject, &questions, &q.Version, &q.LastUpdated); err != nil {
			logging.Error("failed to scan quiz row", err, nil)
			return []*models.CachedQuiz{}
		}
		if err := q.SetQuestionsJSON(questions); err != nil {
			logging.Error("failed to decode quiz questions", err, map[string]interface{}{"quiz_id": q.ID})
			return []*models.CachedQuiz{}
		}
		quizzes = append(quizzes, &q)
	}
	if err := rows.Err(); err != nil {
		logging.Error("failed to iterate quiz rows", err, nil)
		return []*models.CachedQuiz{}
	}
	return quizzes
}
