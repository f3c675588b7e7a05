package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBouncerService_PageAccess(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	svcs := newTestServices(testDB, testutil.NewCapturingSender())
	ctx := context.Background()

	t.Run("empty target", func(t *testing.T) {
		testDB.Truncate(t)

		decision, err := svcs.Bouncer.PageAccess(ctx, nil, "")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusNotFound, decision.HTTPStatus)
		assert.Equal(t, domain.ReasonNoTarget, decision.Reason)
	})

	t.Run("unknown target", func(t *testing.T) {
		testDB.Truncate(t)

		decision, err := svcs.Bouncer.PageAccess(ctx, nil, "NOSUCH00")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusNotFound, decision.HTTPStatus)
		assert.Equal(t, domain.ReasonTargetNotFound, decision.Reason)
	})

	t.Run("banned target hides as not found", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().WithTrustLevel(domain.TrustBanned).Build(t, testDB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, target.MemberID)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusNotFound, decision.HTTPStatus)
		assert.Equal(t, domain.ReasonTargetBanned, decision.Reason)
	})

	t.Run("banned viewer", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, testDB.DB)
		viewer := testutil.NewMemberBuilder().WithTrustLevel(domain.TrustBanned).Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, target.MemberID)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusForbidden, decision.HTTPStatus)
		assert.Equal(t, domain.ReasonViewerBanned, decision.Reason)
	})

	t.Run("block hides the page in both directions", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, testDB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, testDB.DB)
		require.NoError(t, testDB.DB.Create(&domain.Block{
			BlockerID: target.MemberID,
			BlockedID: viewer.MemberID,
			CreatedAt: time.Now(),
		}).Error)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, target.MemberID)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusNotFound, decision.HTTPStatus)
		assert.Equal(t, domain.ReasonBlocked, decision.Reason)

		// The blocker cannot see the blocked member's page either.
		decision, err = svcs.Bouncer.PageAccess(ctx, &target.MemberID, viewer.MemberID)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, domain.ReasonBlocked, decision.Reason)
	})

	t.Run("anonymous viewer gets limited access", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, nil, target.MemberID)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, domain.AccessLimited, decision.AccessLevel)
		assert.Equal(t, domain.ReasonAnonymousViewer, decision.Reason)
		assert.False(t, decision.CanRequestContact)
	})

	t.Run("owner sees their own page in full", func(t *testing.T) {
		testDB.Truncate(t)

		member := testutil.NewMemberBuilder().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, &member.MemberID, member.MemberID)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, domain.AccessFull, decision.AccessLevel)
		assert.True(t, decision.IsOwner)
		assert.False(t, decision.CanRequestContact)
	})

	t.Run("ordinary stranger gets full access and may request contact", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, testDB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, target.MemberID)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, domain.AccessFull, decision.AccessLevel)
		assert.True(t, decision.IsStranger)
		assert.True(t, decision.CanRequestContact)
	})

	t.Run("an active relationship clears the stranger flag", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, testDB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, testDB.DB)

		a, b := domain.PairKey(viewer.MemberID, target.MemberID)
		require.NoError(t, testDB.DB.Create(&domain.Relationship{
			MemberA:   a,
			MemberB:   b,
			Status:    "active",
			IsMutual:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, target.MemberID)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.False(t, decision.IsStranger)
	})
}

func TestBouncerService_PageAccess_GuardianControls(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	svcs := newTestServices(testDB, testutil.NewCapturingSender())
	ctx := context.Background()

	newMinor := func(t *testing.T) *domain.Member {
		return testutil.NewMemberBuilder().AsMinor().Build(t, testDB.DB)
	}

	t.Run("adult male stranger is limited", func(t *testing.T) {
		testDB.Truncate(t)

		minor := newMinor(t)
		testutil.CreateGuardianControl(t, testDB.DB, &domain.GuardianControl{
			MemberID:                   minor.MemberID,
			AdultAgeCutoff:             22,
			BlockAdultMenOverAge:       true,
			AllowRequestsFromStrangers: true,
		})
		viewer := testutil.NewMemberBuilder().WithGender("male").WithAge(30).Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, minor.MemberID)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, domain.AccessLimited, decision.AccessLevel)
		assert.Equal(t, domain.ReasonGuardianBlockAdultMale, decision.GuardianBlockReason)
		assert.False(t, decision.CanRequestContact)
	})

	t.Run("young male passes the age gate", func(t *testing.T) {
		testDB.Truncate(t)

		minor := newMinor(t)
		testutil.CreateGuardianControl(t, testDB.DB, &domain.GuardianControl{
			MemberID:                   minor.MemberID,
			AdultAgeCutoff:             22,
			BlockAdultMenOverAge:       true,
			AllowRequestsFromStrangers: true,
		})
		viewer := testutil.NewMemberBuilder().WithGender("male").WithAge(16).AsMinor().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, minor.MemberID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessFull, decision.AccessLevel)
		assert.Empty(t, decision.GuardianBlockReason)
	})

	t.Run("block male gender applies regardless of age", func(t *testing.T) {
		testDB.Truncate(t)

		minor := newMinor(t)
		testutil.CreateGuardianControl(t, testDB.DB, &domain.GuardianControl{
			MemberID:                   minor.MemberID,
			BlockMaleGender:            true,
			AllowRequestsFromStrangers: true,
		})
		viewer := testutil.NewMemberBuilder().WithGender("male").WithAge(16).AsMinor().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, minor.MemberID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessLimited, decision.AccessLevel)
		assert.Equal(t, domain.ReasonGuardianBlockAdultMale, decision.GuardianBlockReason)
	})

	t.Run("strangers refused when not allowed", func(t *testing.T) {
		testDB.Truncate(t)

		minor := newMinor(t)
		testutil.CreateGuardianControl(t, testDB.DB, &domain.GuardianControl{
			MemberID:                   minor.MemberID,
			AllowRequestsFromStrangers: false,
		})
		viewer := testutil.NewMemberBuilder().WithGender("female").WithAge(30).Build(t, testDB.DB)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, minor.MemberID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessLimited, decision.AccessLevel)
		assert.Equal(t, domain.ReasonGuardianBlocksStrangers, decision.GuardianBlockReason)
	})

	t.Run("known relationship bypasses guardian controls", func(t *testing.T) {
		testDB.Truncate(t)

		minor := newMinor(t)
		testutil.CreateGuardianControl(t, testDB.DB, &domain.GuardianControl{
			MemberID:             minor.MemberID,
			BlockMaleGender:      true,
			BlockAdultMenOverAge: true,
		})
		viewer := testutil.NewMemberBuilder().WithGender("male").WithAge(40).Build(t, testDB.DB)

		a, b := domain.PairKey(viewer.MemberID, minor.MemberID)
		require.NoError(t, testDB.DB.Create(&domain.Relationship{
			MemberA:   a,
			MemberB:   b,
			Status:    "active",
			IsMutual:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error)

		decision, err := svcs.Bouncer.PageAccess(ctx, &viewer.MemberID, minor.MemberID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessFull, decision.AccessLevel)
		assert.Empty(t, decision.GuardianBlockReason)
		assert.True(t, decision.CanRequestContact)
	})
}

func TestBouncerService_ContactAccess(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	svcs := newTestServices(testDB, testutil.NewCapturingSender())
	ctx := context.Background()

	t.Run("anonymous caller", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.ContactAccess(ctx, nil, target.MemberID, domain.ChannelPhoneText)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusUnauthorized, decision.HTTPStatus)
		assert.Equal(t, domain.ReasonNotAuthenticated, decision.Reason)
	})

	t.Run("invalid channel", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, testDB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.ContactAccess(ctx, &viewer.MemberID, target.MemberID, domain.ChannelType("carrier_pigeon"))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusBadRequest, decision.HTTPStatus)
		assert.Equal(t, domain.ReasonInvalidChannelType, decision.Reason)
	})

	t.Run("guardian limitation surfaces as forbidden", func(t *testing.T) {
		testDB.Truncate(t)

		minor := testutil.NewMemberBuilder().AsMinor().Build(t, testDB.DB)
		testutil.CreateGuardianControl(t, testDB.DB, &domain.GuardianControl{
			MemberID:        minor.MemberID,
			BlockMaleGender: true,
		})
		viewer := testutil.NewMemberBuilder().WithGender("male").WithAge(30).Build(t, testDB.DB)

		decision, err := svcs.Bouncer.ContactAccess(ctx, &viewer.MemberID, minor.MemberID, domain.ChannelRelationship)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusForbidden, decision.HTTPStatus)
		assert.True(t, decision.GuardianBlocked)
	})

	t.Run("allowed", func(t *testing.T) {
		testDB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, testDB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, testDB.DB)

		decision, err := svcs.Bouncer.ContactAccess(ctx, &viewer.MemberID, target.MemberID, domain.ChannelRelationship)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})
}
