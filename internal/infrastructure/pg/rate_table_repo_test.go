package pg_test

import (
	"context"
	"testing"
	"time"

	"fxrates-etl/internal/domain"
	"fxrates-etl/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRateTableRepo_SaveLoad(t *testing.T) {
	db := withPostgres(t)
	ctx := context.Background()
	repo := pg.NewRateTableRepo(db)

	table, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, table)

	first := domain.RateTable{
		{CurrencyCode: "EUR", RateDate: day("2024-01-02"), Rate: 4.3434},
		{CurrencyCode: "USD", RateDate: day("2024-01-02"), Rate: 3.9432},
	}
	require.NoError(t, repo.Save(ctx, first))

	second := domain.MergeRates(first, domain.RateTable{
		{CurrencyCode: "EUR", RateDate: day("2024-01-03"), Rate: 4.3646},
	})
	require.NoError(t, repo.Save(ctx, second))

	got, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, second, got)
}

func TestRateTableRepo_MigrationsIdempotent(t *testing.T) {
	db := withPostgres(t)
	require.NoError(t, pg.RunMigrations(context.Background(), db))
}
