package repository

import (
	"context"
	"testing"

	"echohole/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitRepository_Summarize(t *testing.T) {
	repo := NewVisitRepository(setupTestDB(t))
	ctx := context.Background()

	const now = int64(1_700_000_000)
	hourStart := now - now%3600

	visits := []models.Visit{
		{VisitorID: "v1", IPHash: "ip1", DeviceModel: "iPhone", BrowserFamily: "Safari", PagePath: "/", CreatedAt: hourStart + 10},
		{VisitorID: "v1", IPHash: "ip1", DeviceModel: "iPhone", BrowserFamily: "Safari", PagePath: "/a", CreatedAt: hourStart + 20},
		{VisitorID: "v2", IPHash: "ip1", DeviceModel: "Windows", BrowserFamily: "Chrome", PagePath: "/", CreatedAt: hourStart - 3600},
		{VisitorID: "v3", IPHash: "ip2", DeviceModel: "Android", BrowserFamily: "Chrome", PagePath: "/", CreatedAt: now - 60},
		{VisitorID: "old", IPHash: "ip9", DeviceModel: "Linux", BrowserFamily: "Firefox", PagePath: "/", CreatedAt: now - 48*3600},
	}
	for i := range visits {
		require.NoError(t, repo.Create(ctx, &visits[i]))
	}

	s, err := repo.Summarize(ctx, VisitWindow{Since: now - 24*3600, RealtimeSince: now - 300, RecentLimit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(4), s.TotalVisits)
	assert.Equal(t, int64(3), s.UniqueVisitors)
	assert.Equal(t, int64(2), s.UniqueIPs)

	require.NotEmpty(t, s.DeviceBreakdown)
	assert.Equal(t, models.CategoryCount{Name: "iPhone", Count: 2}, s.DeviceBreakdown[0])
	assert.Len(t, s.DeviceBreakdown, 3)

	require.Len(t, s.BrowserBreakdown, 2)
	assert.Equal(t, "Chrome", s.BrowserBreakdown[0].Name)
	assert.Equal(t, "Safari", s.BrowserBreakdown[1].Name)

	require.Len(t, s.RecentVisits, 2)
	assert.GreaterOrEqual(t, s.RecentVisits[0].CreatedAt, s.RecentVisits[1].CreatedAt)

	var hourly int64
	for _, h := range s.Hourly {
		assert.GreaterOrEqual(t, h.Hour, 0)
		assert.Less(t, h.Hour, 24)
		hourly += h.Count
	}
	assert.Equal(t, s.TotalVisits, hourly)
}

func TestVisitRepository_RealtimeWindow(t *testing.T) {
	repo := NewVisitRepository(setupTestDB(t))
	ctx := context.Background()
	const now = int64(1_700_000_000)

	for _, age := range []int64{10, 200, 299, 301, 3000} {
		require.NoError(t, repo.Create(ctx, &models.Visit{VisitorID: "v", CreatedAt: now - age}))
	}

	s, err := repo.Summarize(ctx, VisitWindow{Since: now - 3600, RealtimeSince: now - 300, RecentLimit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.TotalVisits)
	assert.Equal(t, int64(3), s.RealtimeVisits)
	assert.Equal(t, int64(0), s.UniqueIPs)
}

func TestVisitRepository_RecentAndDeleteBefore(t *testing.T) {
	repo := NewVisitRepository(setupTestDB(t))
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.Visit{VisitorID: "v", CreatedAt: i * 100}))
	}

	recent, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(500), recent[0].CreatedAt)
	assert.Equal(t, int64(300), recent[2].CreatedAt)

	n, err := repo.DeleteBefore(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	recent, err = repo.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}
