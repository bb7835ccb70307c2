package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"esgportal/models"
)

// TemplateRepo reads questionnaire templates.
type TemplateRepo struct{ db *sql.DB }

func NewTemplateRepo(conn *sql.DB) *TemplateRepo { return &TemplateRepo{db: conn} }

// Get returns the template for jurisdiction and version, or nil when none exists yet.
func (r *TemplateRepo) Get(ctx context.Context, jurisdiction, version string) (*models.QuestionnaireTemplate, error) {
	const q = `
SELECT id, jurisdiction, version, name, questions, created_at
FROM questionnaire_templates WHERE jurisdiction = $1 AND version = $2`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, q, jurisdiction, version))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryFailed("select template", err)
	}
	return t, nil
}

// GetByID returns the template with id, or nil.
func (r *TemplateRepo) GetByID(ctx context.Context, id string) (*models.QuestionnaireTemplate, error) {
	const q = `
SELECT id, jurisdiction, version, name, questions, created_at
FROM questionnaire_templates WHERE id = $1`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryFailed("select template by id", err)
	}
	return t, nil
}

// List returns templates, optionally filtered by jurisdiction, newest version first.
func (r *TemplateRepo) List(ctx context.Context, jurisdiction string) ([]models.QuestionnaireTemplate, error) {
	const q = `
SELECT id, jurisdiction, version, name, questions, created_at
FROM questionnaire_templates
WHERE $1 = '' OR jurisdiction = $1
ORDER BY jurisdiction, version DESC`
	rows, err := r.db.QueryContext(ctx, q, jurisdiction)
	if err != nil {
		return nil, queryFailed("list templates", err)
	}
	defer rows.Close()

	templates := []models.QuestionnaireTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, queryFailed("scan template", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed("list templates", err)
	}
	return templates, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.QuestionnaireTemplate, error) {
	var (
		t         models.QuestionnaireTemplate
		questions []byte
	)
	if err := row.Scan(&t.ID, &t.Jurisdiction, &t.Version, &t.Name, &questions, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &t.Questions); err != nil {
			return nil, err
		}
	}
	if t.Questions == nil {
		t.Questions = []models.Question{}
	}
	return &t, nil
}
