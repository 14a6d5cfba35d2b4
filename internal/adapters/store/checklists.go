package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
)

const checklistColumns = `id, title, description, sphere_id, created_at, updated_at`

// checklistSummarySelect joins sphere metadata and counts tasks per
// checklist. COUNT(t.id) yields zero for checklists without tasks.
const checklistSummarySelect = `
	SELECT c.id, c.title, c.description, c.sphere_id, c.created_at, c.updated_at,
	       s.name, s.color, s.icon, COUNT(t.id)
	FROM checklists c
	LEFT JOIN life_spheres s ON s.id = c.sphere_id
	LEFT JOIN tasks t ON t.checklist_id = c.id`

const checklistSummaryGroup = `
	GROUP BY c.id, s.name, s.color, s.icon`

func scanChecklist(row rowScanner) (*core.Checklist, error) {
	var c core.Checklist
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.SphereID,
		scanTime(&c.CreatedAt), scanNullTime(&c.UpdatedAt)); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanChecklistSummary(row rowScanner) (*core.ChecklistSummary, error) {
	var c core.ChecklistSummary
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.SphereID,
		scanTime(&c.CreatedAt), scanNullTime(&c.UpdatedAt),
		&c.SphereName, &c.SphereColor, &c.SphereIcon, &c.TasksCount); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChecklists returns every checklist with its sphere metadata and task
// count, newest first.
func (s *Store) ListChecklists(ctx context.Context) ([]core.ChecklistSummary, error) {
	rows, err := s.query(ctx, checklistSummarySelect+checklistSummaryGroup+`
	ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing checklists: %w", classify(err))
	}
	defer rows.Close()

	checklists := []core.ChecklistSummary{}
	for rows.Next() {
		c, err := scanChecklistSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning checklist: %w", classify(err))
		}
		checklists = append(checklists, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing checklists: %w", classify(err))
	}
	return checklists, nil
}

// GetChecklist returns a checklist summary together with its tasks, oldest
// task first.
func (s *Store) GetChecklist(ctx context.Context, id int64) (*core.ChecklistDetail, error) {
	summary, err := scanChecklistSummary(s.queryRow(ctx, checklistSummarySelect+`
	WHERE c.id = ?`+checklistSummaryGroup, id))
	if err != nil {
		return nil, notFoundOr(err, "checklist", strconv.FormatInt(id, 10))
	}

	tasks, err := s.ListTasksByChecklist(ctx, id)
	if err != nil {
		return nil, err
	}

	return &core.ChecklistDetail{ChecklistSummary: *summary, Tasks: tasks}, nil
}

// CreateChecklist inserts a checklist and returns the plain row.
func (s *Store) CreateChecklist(ctx context.Context, v core.ChecklistValues) (*core.Checklist, error) {
	c, err := scanChecklist(s.queryRow(ctx, `
		INSERT INTO checklists (title, description, sphere_id)
		VALUES (?, ?, ?)
		RETURNING `+checklistColumns, v.Title, v.Description, v.SphereID))
	if err != nil {
		return nil, fmt.Errorf("creating checklist: %w", classify(err))
	}
	return c, nil
}

// UpdateChecklist replaces title, description and sphere of a checklist and
// stamps updated_at.
func (s *Store) UpdateChecklist(ctx context.Context, id *int64, v core.ChecklistValues) (*core.Checklist, error) {
	c, err := scanChecklist(s.queryRow(ctx, `
		UPDATE checklists
		SET title = ?, description = ?, sphere_id = ?, updated_at = `+s.dialect.now()+`
		WHERE id = ?
		RETURNING `+checklistColumns, v.Title, v.Description, v.SphereID, id))
	if err != nil {
		return nil, notFoundOr(err, "checklist", idString(id))
	}
	return c, nil
}

// DeleteChecklist removes a checklist. Its tasks go with it through the
// schema's cascade.
func (s *Store) DeleteChecklist(ctx context.Context, id *int64) error {
	if _, err := s.exec(ctx, `DELETE FROM checklists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting checklist %s: %w", idString(id), classify(err))
	}
	return nil
}
