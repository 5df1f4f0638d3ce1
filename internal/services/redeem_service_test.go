package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/internal/store"
	"sidequest_portal/pkg/apperrors"
)

func newRedeem() RedeemService {
	return NewRedeemService("biz-1", NewSubscriptionService("biz-1"))
}

func TestCreateRedeem_BlockedLocally(t *testing.T) {
	cases := []struct {
		name     string
		subs     []models.UserSubscription
		kind     models.RedeemType
		message  string
		wantCode apperrors.ErrorCode
	}{
		{"no type", []models.UserSubscription{activeSub(1, 3, 3)}, "", MsgSelectRedeemType, apperrors.CodeInvalidOperation},
		{"normal without available", []models.UserSubscription{activeSub(1, 0, 2)}, models.RedeemTypeNormal, MsgNeedAvailableCredit, apperrors.CodeInsufficientCredit},
		{"guest without gift", []models.UserSubscription{activeSub(1, 2, 0)}, models.RedeemTypeGuest, MsgNeedGiftCredit, apperrors.CodeInsufficientCredit},
		{"no subscriptions, guest", nil, models.RedeemTypeGuest, MsgNeedGiftCredit, apperrors.CodeInsufficientCredit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newScope("t", "client").withSubscriptions(tc.subs...)

			_, err := newRedeem().Create(context.Background(), ts.Scope, tc.kind)

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tc.wantCode, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
			assert.Zero(t, ts.api.count(http.MethodPost, backend.PathCreateRedeem))
			assert.Equal(t, []string{tc.message}, ts.errors())
		})
	}
}

func TestCheckCredits_BothPoolsEmpty(t *testing.T) {
	err := newRedeem().CheckCredits(store.CreditTotals{}, models.RedeemType("other"))
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, MsgSelectRedeemType, appErr.Message)

	assert.NoError(t, newRedeem().CheckCredits(store.CreditTotals{Available: 1}, models.RedeemTypeNormal))
	assert.NoError(t, newRedeem().CheckCredits(store.CreditTotals{Gift: 1}, models.RedeemTypeGuest))
}

func TestCreateRedeem_FetchesSubscriptionsWhenIdle(t *testing.T) {
	ts := newScope("t", "client")
	ts.api.on(http.MethodGet, backend.PathClientSubscriptions, `[{"id":1,"status":"ACTIVE","available_credit":0}]`)

	_, err := newRedeem().Create(context.Background(), ts.Scope, models.RedeemTypeNormal)

	require.Error(t, err)
	assert.Equal(t, 1, ts.api.count(http.MethodGet, backend.PathClientSubscriptions))
	assert.Zero(t, ts.api.count(http.MethodPost, backend.PathCreateRedeem))
}

func TestCreateRedeem_SendsButtonNumberAndRefetches(t *testing.T) {
	ts := newScope("t", "client").withSubscriptions(activeSub(1, 0, 2))
	ts.api.on(http.MethodPost, backend.PathCreateRedeem, `{"id":55,"gift_charge_credit":1}`).
		on(http.MethodGet, backend.PathClientRedeem, `[{"id":55}]`).
		on(http.MethodGet, backend.PathClientSubscriptions, `[{"id":1,"status":"ACTIVE","gift_credit":1}]`)

	item, err := newRedeem().Create(context.Background(), ts.Scope, models.RedeemTypeGuest)

	require.NoError(t, err)
	assert.Equal(t, int64(55), item.ID)

	call, ok := ts.api.last(http.MethodPost, backend.PathCreateRedeem)
	require.True(t, ok)
	assert.Equal(t, dto.RedeemBody{BusinessID: "biz-1", ButtonNumber: 2}, call.Body)

	assert.Equal(t, 1, ts.api.count(http.MethodGet, backend.PathClientRedeem))
	assert.Equal(t, 1, ts.api.count(http.MethodGet, backend.PathClientSubscriptions))
	snap := ts.State.Snapshot()
	assert.Equal(t, 1, store.SumCredits(snap.Subscriptions.List.Data).Gift)
	assert.Len(t, snap.Redeem.Items.Data, 1)
}

func redeemPage(from, n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf(`{"id":%d}`, from+i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestRedeemPaging(t *testing.T) {
	ts := newScope("t", "client")
	ts.api.on(http.MethodGet, backend.PathClientRedeem, redeemPage(1, store.RedeemPerPage)).
		on(http.MethodGet, backend.PathClientRedeem, redeemPage(6, 2))
	svc := newRedeem()

	first, err := svc.FetchItems(context.Background(), ts.Scope)
	require.NoError(t, err)
	assert.Len(t, first.Items.Data, 5)
	assert.True(t, first.HasMore)

	next, err := svc.LoadMore(context.Background(), ts.Scope)
	require.NoError(t, err)
	assert.Len(t, next.Items.Data, 7)
	assert.Equal(t, 1, next.Page)
	assert.False(t, next.HasMore)

	// дальше страниц нет, backend не вызывается
	_, err = svc.LoadMore(context.Background(), ts.Scope)
	require.NoError(t, err)
	assert.Equal(t, 2, ts.api.count(http.MethodGet, backend.PathClientRedeem))
}

func TestRedeemHistory_Failure(t *testing.T) {
	ts := newScope("t", "client")
	ts.api.onErr(http.MethodGet, backend.PathClientRedeemHistory, &backend.TimeoutError{})

	_, err := newRedeem().History(context.Background(), ts.Scope)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeBackendTimeout, appErr.Code)
	hist := ts.State.Snapshot().Redeem.History
	assert.Equal(t, store.StatusError, hist.Status)
	assert.Equal(t, backend.MsgTimeout, hist.Error)
}
