package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
)

const sphereColumns = `id, name, icon, color, created_at`

func scanSphere(row rowScanner) (*core.Sphere, error) {
	var s core.Sphere
	if err := row.Scan(&s.ID, &s.Name, &s.Icon, &s.Color, scanTime(&s.CreatedAt)); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSpheres returns every sphere, newest first.
func (s *Store) ListSpheres(ctx context.Context) ([]core.Sphere, error) {
	rows, err := s.query(ctx, `
		SELECT `+sphereColumns+`
		FROM life_spheres
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing spheres: %w", classify(err))
	}
	defer rows.Close()

	spheres := []core.Sphere{}
	for rows.Next() {
		sphere, err := scanSphere(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sphere: %w", classify(err))
		}
		spheres = append(spheres, *sphere)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing spheres: %w", classify(err))
	}
	return spheres, nil
}

// GetSphere returns the sphere with the given id.
func (s *Store) GetSphere(ctx context.Context, id int64) (*core.Sphere, error) {
	sphere, err := scanSphere(s.queryRow(ctx, `
		SELECT `+sphereColumns+`
		FROM life_spheres
		WHERE id = ?`, id))
	if err != nil {
		return nil, notFoundOr(err, "sphere", strconv.FormatInt(id, 10))
	}
	return sphere, nil
}

// CreateSphere inserts a sphere. Nil values are written as NULL; column
// defaults are the caller's responsibility.
func (s *Store) CreateSphere(ctx context.Context, v core.SphereValues) (*core.Sphere, error) {
	sphere, err := scanSphere(s.queryRow(ctx, `
		INSERT INTO life_spheres (name, icon, color)
		VALUES (?, ?, ?)
		RETURNING `+sphereColumns, v.Name, v.Icon, v.Color))
	if err != nil {
		return nil, fmt.Errorf("creating sphere: %w", classify(err))
	}
	return sphere, nil
}

// UpdateSphere replaces name, icon and color of the sphere with the given id.
func (s *Store) UpdateSphere(ctx context.Context, id *int64, v core.SphereValues) (*core.Sphere, error) {
	sphere, err := scanSphere(s.queryRow(ctx, `
		UPDATE life_spheres
		SET name = ?, icon = ?, color = ?
		WHERE id = ?
		RETURNING `+sphereColumns, v.Name, v.Icon, v.Color, id))
	if err != nil {
		return nil, notFoundOr(err, "sphere", idString(id))
	}
	return sphere, nil
}

// DeleteSphere removes the sphere with the given id. Deleting a missing row
// is not an error.
func (s *Store) DeleteSphere(ctx context.Context, id *int64) error {
	if _, err := s.exec(ctx, `DELETE FROM life_spheres WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting sphere %s: %w", idString(id), classify(err))
	}
	return nil
}

func idString(id *int64) string {
	if id == nil {
		return "null"
	}
	return strconv.FormatInt(*id, 10)
}
