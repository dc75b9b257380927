package courses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onego-ai/onego/internal/quiz"
)

type Repository interface {
	Create(ctx context.Context, c *Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*Course, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*Course, error)
	CountByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
	// UpdateQuizzes replaces the quiz set and clears quizzes_pending.
	UpdateQuizzes(ctx context.Context, id uuid.UUID, quizzes []quiz.Quiz) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const courseColumns = `id, creator_id, title, description, learner_description, subject, track_type,
	tutor_persona, system_prompt, modules, quizzes, quizzes_pending, module_count, quiz_count,
	duration, status, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, c *Course) error {
	modules, err := json.Marshal(c.Modules)
	if err != nil {
		return fmt.Errorf("marshaling modules: %w", err)
	}
	quizzes, err := marshalQuizzes(c.Quizzes)
	if err != nil {
		return err
	}

	query := `INSERT INTO courses (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err = r.pool.Exec(ctx, query,
		c.ID, c.CreatorID, c.Title, c.Description, c.LearnerDescription, c.Subject, c.TrackType,
		c.TutorPersona, c.SystemPrompt, modules, quizzes, c.QuizzesPending, c.ModuleCount, c.QuizCount,
		c.Duration, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	c, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying course by id: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, creatorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *postgresRepository) CountByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses WHERE creator_id = $1`, creatorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) UpdateQuizzes(ctx context.Context, id uuid.UUID, quizzes []quiz.Quiz) error {
	data, err := marshalQuizzes(quizzes)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET quizzes = $2, quiz_count = $3, quizzes_pending = FALSE, updated_at = NOW()
		WHERE id = $1`, id, data, len(quizzes))
	if err != nil {
		return fmt.Errorf("updating course quizzes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating course quizzes: %w", ErrCourseNotFound)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	return nil
}

func scanCourse(row pgx.Row) (*Course, error) {
	c := &Course{}
	var modules, quizzes []byte
	err := row.Scan(
		&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.LearnerDescription, &c.Subject, &c.TrackType,
		&c.TutorPersona, &c.SystemPrompt, &modules, &quizzes, &c.QuizzesPending, &c.ModuleCount, &c.QuizCount,
		&c.Duration, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(modules, &c.Modules); err != nil {
		return nil, fmt.Errorf("unmarshaling modules: %w", err)
	}
	if len(quizzes) > 0 {
		if err := json.Unmarshal(quizzes, &c.Quizzes); err != nil {
			return nil, fmt.Errorf("unmarshaling quizzes: %w", err)
		}
	}
	return c, nil
}

// A nil quiz set is stored as SQL NULL.
func marshalQuizzes(quizzes []quiz.Quiz) ([]byte, error) {
	if quizzes == nil {
		return nil, nil
	}
	data, err := json.Marshal(quizzes)
	if err != nil {
		return nil, fmt.Errorf("marshaling quizzes: %w", err)
	}
	return data, nil
}
