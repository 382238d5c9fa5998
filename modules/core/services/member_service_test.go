package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestMemberUpsert_RequiresAnIdentity(t *testing.T) {
	svc := NewMemberService(newFakeMembershipRepo())

	_, err := svc.Upsert(context.Background(), UpsertMemberParams{
		OrgID: uuid.New(),
		Role:  "admin",
	})

	requireServiceError(t, err, http.StatusBadRequest, "CORE_INVALID_BODY")
}

func TestMemberUpsert_RejectsUnknownRole(t *testing.T) {
	svc := NewMemberService(newFakeMembershipRepo())

	_, err := svc.Upsert(context.Background(), UpsertMemberParams{
		OrgID:  uuid.New(),
		UserID: "u-1",
		Role:   "superuser",
	})

	requireServiceError(t, err, http.StatusBadRequest, "CORE_INVALID_ROLE")
}
