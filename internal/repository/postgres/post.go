package postgres

import (
	"context"

	squirrel "github.com/Masterminds/squirrel"

	"download-service/internal/domain/post"
	"download-service/internal/rbac"
	apperrors "download-service/pkg/errors"
)

type PostRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewPostRepository(exec pgExecutor) *PostRepository {
	return &PostRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PostRepository) GetPermission(ctx context.Context, id string) (*post.PermissionRecord, error) {
	query, args, err := r.builder.
		Select("id", "required_role", "download_count").
		From(tablePosts).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errFailedBuildQuery("post permission", err)
	}

	var (
		record       post.PermissionRecord
		requiredRole *string
	)
	if err := r.exec.QueryRow(ctx, query, args...).Scan(&record.PostID, &requiredRole, &record.DownloadCount); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errPostNotFound)
		}
		return nil, errFailedGetPostPermission(err)
	}

	if requiredRole != nil {
		record.RequiredRole = rbac.Role(*requiredRole)
	}

	return &record, nil
}

// IncrementDownloadCount bumps the counter in a single statement and returns
// the new value.
func (r *PostRepository) IncrementDownloadCount(ctx context.Context, id string) (int64, error) {
	query, args, err := r.builder.
		Update(tablePosts).
		Set("download_count", squirrel.Expr("download_count + 1")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING download_count").
		ToSql()
	if err != nil {
		return 0, errFailedBuildQuery("increment download count", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		if isNoRows(err) {
			return 0, apperrors.NotFound(errPostNotFound)
		}
		return 0, errFailedIncrementCounter(err)
	}

	return count, nil
}
