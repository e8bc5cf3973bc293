package postgres

import (
	"context"

	squirrel "github.com/Masterminds/squirrel"

	"download-service/internal/domain/profile"
	"download-service/internal/rbac"
	apperrors "download-service/pkg/errors"
)

type ProfileRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewProfileRepository(exec pgExecutor) *ProfileRepository {
	return &ProfileRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ProfileRepository) GetRole(ctx context.Context, id string) (rbac.Role, error) {
	query, args, err := r.builder.
		Select("role").
		From(tableProfiles).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", errFailedBuildQuery("profile role", err)
	}

	var role string
	if err := r.exec.QueryRow(ctx, query, args...).Scan(&role); err != nil {
		if isNoRows(err) {
			return "", apperrors.NotFound(errProfileNotFound)
		}
		return "", errFailedGetProfileRole(err)
	}

	return rbac.Role(role), nil
}

// Ensure relies on the primary key of profiles so concurrent calls for the
// same identity create at most one row.
func (r *ProfileRepository) Ensure(ctx context.Context, input profile.EnsureProfileInput) (bool, error) {
	query, args, err := r.builder.
		Insert(tableProfiles).
		Columns("id", "display_name").
		Values(input.ID, input.DisplayName).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, errFailedBuildQuery("ensure profile", err)
	}

	tag, err := r.exec.Exec(ctx, query, args...)
	if err != nil {
		return false, errFailedEnsureProfile(err)
	}

	return tag.RowsAffected() == 1, nil
}
