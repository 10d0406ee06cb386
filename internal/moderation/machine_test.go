package moderation

import (
	"testing"

	"echohole/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_InitialStatus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, models.PostStatusPublished, NewMachine(Policy{}).InitialStatus())
	assert.Equal(t, models.PostStatusPending, NewMachine(Policy{RequirePreApproval: true}).InitialStatus())
	assert.Equal(t, models.PostStatusReported, NewMachine(Policy{}).ReviewQueue())
	assert.Equal(t, models.PostStatusPending, NewMachine(Policy{RequirePreApproval: true}).ReviewQueue())
}

func TestMachine_Apply(t *testing.T) {
	t.Parallel()
	m := NewMachine(Policy{})

	tests := []struct {
		name      string
		from      models.PostStatus
		action    Action
		want      models.PostStatus
		wantEvent string
		wantErr   error
	}{
		{"Report Published", models.PostStatusPublished, ActionReport, models.PostStatusReported, EventPostReported, nil},
		{"Report Approved", models.PostStatusApproved, ActionReport, models.PostStatusReported, EventPostReported, nil},
		{"Report Reported", models.PostStatusReported, ActionReport, models.PostStatusReported, EventPostReported, nil},
		{"Report Hidden", models.PostStatusHidden, ActionReport, models.PostStatusHidden, EventPostReported, nil},
		{"Report Rejected", models.PostStatusRejected, ActionReport, models.PostStatusRejected, EventPostReported, nil},
		{"Report Pending", models.PostStatusPending, ActionReport, models.PostStatusPending, EventPostReported, nil},
		{"Approve Reported", models.PostStatusReported, ActionApprove, models.PostStatusPublished, EventPostApproved, nil},
		{"Reject Reported", models.PostStatusReported, ActionReject, models.PostStatusHidden, EventPostRejected, nil},
		{"Approve Pending", models.PostStatusPending, ActionApprove, models.PostStatusApproved, EventPostApproved, nil},
		{"Reject Pending", models.PostStatusPending, ActionReject, models.PostStatusRejected, EventPostRejected, nil},
		{"Delete Hidden", models.PostStatusHidden, ActionDelete, models.PostStatusDeleted, EventPostDeleted, nil},
		{"Delete Published", models.PostStatusPublished, ActionDelete, models.PostStatusDeleted, EventPostDeleted, nil},
		{"Delete Pending", models.PostStatusPending, ActionDelete, models.PostStatusDeleted, EventPostDeleted, nil},
		{"Approve Published", models.PostStatusPublished, ActionApprove, "", "", ErrInvalidTransition},
		{"Reject Hidden", models.PostStatusHidden, ActionReject, "", "", ErrInvalidTransition},
		{"Approve Approved", models.PostStatusApproved, ActionApprove, "", "", ErrInvalidTransition},
		{"Delete Deleted", models.PostStatusDeleted, ActionDelete, "", "", ErrInvalidTransition},
		{"Report Deleted", models.PostStatusDeleted, ActionReport, "", "", ErrInvalidTransition},
		{"Unknown State", models.PostStatus("bogus"), ActionReport, "", "", ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := m.Apply(tt.from, tt.action, ActorAdmin)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, tr.From)
			assert.Equal(t, tt.want, tr.To)
			assert.Equal(t, tt.wantEvent, tr.Event)
			assert.Equal(t, tt.action == ActionReport, tr.Counted)
		})
	}
}

func TestMachine_UserCannotModerate(t *testing.T) {
	t.Parallel()
	m := NewMachine(Policy{})

	for _, a := range []Action{ActionApprove, ActionReject, ActionDelete} {
		_, err := m.Apply(models.PostStatusReported, a, ActorUser)
		assert.ErrorIs(t, err, ErrForbidden, a)
	}

	tr, err := m.Apply(models.PostStatusPublished, ActionReport, ActorUser)
	require.NoError(t, err)
	assert.True(t, tr.Changed())
}

func TestParseAction(t *testing.T) {
	t.Parallel()
	a, err := ParseAction("approve")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	_, err = ParseAction("promote")
	assert.Error(t, err)
}

func TestVisible(t *testing.T) {
	t.Parallel()
	assert.True(t, Visible(models.PostStatusPublished))
	assert.True(t, Visible(models.PostStatusApproved))
	for _, s := range []models.PostStatus{
		models.PostStatusPending, models.PostStatusReported, models.PostStatusRejected, models.PostStatusHidden,
	} {
		assert.False(t, Visible(s), s)
	}
}
