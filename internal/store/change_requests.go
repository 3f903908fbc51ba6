package store

import (
	"context"
	"database/sql"
	"fmt"

	"sprintdesk/internal/models"
)

const changeRequestColumns = `id, project_id, sprint_id, title, description, status, requested_by_id, approved_by_id,
	approved_at, approval_metadata, esign_document_url, esign_audit_trail, esign_audit_digest, decision_notes,
	created_at, updated_at`

// CreateChangeRequest inserts a change request and sets its id.
func (q queries) CreateChangeRequest(ctx context.Context, cr *models.ChangeRequest) error {
	if cr == nil {
		return fmt.Errorf("change request is required")
	}
	metadata, err := encodeJSON(cr.ApprovalMetadata)
	if err != nil {
		return err
	}
	trail, err := encodeJSON(cr.ESignAuditTrail)
	if err != nil {
		return err
	}

	id, err := q.insertReturningID(ctx, `
		INSERT INTO change_requests (
			project_id, sprint_id, title, description, status, requested_by_id, approved_by_id, approved_at,
			approval_metadata, esign_document_url, esign_audit_trail, esign_audit_digest, decision_notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cr.ProjectID,
		nullInt64(cr.SprintID),
		cr.Title,
		nullIfEmpty(cr.Description),
		string(cr.Status),
		nullInt64(cr.RequestedByID),
		nullInt64(cr.ApprovedByID),
		q.nullTimeArg(cr.ApprovedAt),
		metadata,
		nullIfEmpty(cr.ESignDocumentURL),
		trail,
		nullIfEmpty(cr.ESignAuditDigest),
		nullIfEmpty(cr.DecisionNotes),
		q.timeArg(cr.CreatedAt),
		q.timeArg(cr.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert change request: %w", err)
	}
	cr.ID = id
	return nil
}

// UpdateChangeRequest overwrites the mutable columns of a change request.
func (q queries) UpdateChangeRequest(ctx context.Context, cr *models.ChangeRequest) error {
	if cr == nil {
		return fmt.Errorf("change request is required")
	}
	metadata, err := encodeJSON(cr.ApprovalMetadata)
	if err != nil {
		return err
	}
	trail, err := encodeJSON(cr.ESignAuditTrail)
	if err != nil {
		return err
	}

	_, err = q.exec(ctx, `
		UPDATE change_requests
		SET sprint_id = ?, title = ?, description = ?, status = ?, requested_by_id = ?, approved_by_id = ?,
			approved_at = ?, approval_metadata = ?, esign_document_url = ?, esign_audit_trail = ?,
			esign_audit_digest = ?, decision_notes = ?, updated_at = ?
		WHERE id = ? AND project_id = ?`,
		nullInt64(cr.SprintID),
		cr.Title,
		nullIfEmpty(cr.Description),
		string(cr.Status),
		nullInt64(cr.RequestedByID),
		nullInt64(cr.ApprovedByID),
		q.nullTimeArg(cr.ApprovedAt),
		metadata,
		nullIfEmpty(cr.ESignDocumentURL),
		trail,
		nullIfEmpty(cr.ESignAuditDigest),
		nullIfEmpty(cr.DecisionNotes),
		q.timeArg(cr.UpdatedAt),
		cr.ID,
		cr.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update change request: %w", err)
	}
	return nil
}

// GetChangeRequest returns a change request scoped to its project.
func (q queries) GetChangeRequest(ctx context.Context, projectID, id int64) (*models.ChangeRequest, error) {
	row := q.queryRow(ctx, "SELECT "+changeRequestColumns+" FROM change_requests WHERE id = ? AND project_id = ?", id, projectID)
	return scanChangeRequest(row)
}

// ListChangeRequests returns a project's change requests, optionally limited to one sprint, ordered by id.
func (q queries) ListChangeRequests(ctx context.Context, projectID int64, sprintID *int64) ([]models.ChangeRequest, error) {
	query := "SELECT " + changeRequestColumns + " FROM change_requests WHERE project_id = ?"
	args := []any{projectID}
	if sprintID != nil {
		query += " AND sprint_id = ?"
		args = append(args, *sprintID)
	}
	query += " ORDER BY id"

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ChangeRequest{}
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cr)
	}
	return out, rows.Err()
}

func scanChangeRequest(scanner rowScanner) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	var sprintID, requestedByID, approvedByID sql.NullInt64
	var description, metadata, documentURL, trail, digest, notes sql.NullString
	var approvedAt, createdAt, updatedAt timeColumn
	var status string

	if err := scanner.Scan(
		&cr.ID,
		&cr.ProjectID,
		&sprintID,
		&cr.Title,
		&description,
		&status,
		&requestedByID,
		&approvedByID,
		&approvedAt,
		&metadata,
		&documentURL,
		&trail,
		&digest,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	cr.SprintID = int64Ptr(sprintID)
	cr.RequestedByID = int64Ptr(requestedByID)
	cr.ApprovedByID = int64Ptr(approvedByID)
	cr.Description = description.String
	cr.Status = models.ChangeRequestStatus(status)
	cr.ESignDocumentURL = documentURL.String
	cr.ESignAuditDigest = digest.String
	cr.DecisionNotes = notes.String
	cr.ApprovedAt = approvedAt.ptr()
	cr.CreatedAt = createdAt.Time
	cr.UpdatedAt = updatedAt.Time

	var err error
	if cr.ApprovalMetadata, err = decodeJSONMap(metadata); err != nil {
		return nil, err
	}
	if cr.ESignAuditTrail, err = decodeJSONValue(trail); err != nil {
		return nil, err
	}
	return &cr, nil
}
