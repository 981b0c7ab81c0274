package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSalesRepositoryStats проверяет сбор агрегированной статистики.
func TestSalesRepositoryStats(t *testing.T) {
	mock := newMock(t)
	repo := NewSalesRepository(mock)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM users").
		WillReturnRows(pgxmock.NewRows([]string{"leads", "sales"}).AddRow(12, 2))
	mock.ExpectQuery("FROM financial_profiles").
		WillReturnRows(pgxmock.NewRows([]string{"profiles", "documents", "recommendations", "selections"}).AddRow(9, 20, 15, 4))
	mock.ExpectQuery("FROM ai_requests").
		WillReturnRows(pgxmock.NewRows([]string{"total", "success", "fail"}).AddRow(17, 15, 2))
	mock.ExpectQuery("FROM recommendations").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"day", "count"}).AddRow(day, 3))

	stats, err := repo.Stats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Leads)
	assert.Equal(t, 2, stats.SalesStaff)
	assert.Equal(t, 15, stats.Recommendations)
	assert.Equal(t, 4, stats.Selections)
	assert.Equal(t, 2, stats.AIFail)
	require.Len(t, stats.RecommendationsByDay, 1)
	assert.Equal(t, 3, stats.RecommendationsByDay[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesRepositoryStatsInvalidDays(t *testing.T) {
	repo := NewSalesRepository(newMock(t))
	_, err := repo.Stats(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestSalesRepositoryCountLeads(t *testing.T) {
	mock := newMock(t)
	repo := NewSalesRepository(mock)

	mock.ExpectQuery("SELECT COUNT").WithArgs("user").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
