//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"afi/internal/dataset/models"
	"afi/internal/dataset/store"
	"afi/internal/platform/postgres"
	"afi/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.DB))
	s.store = store.NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.store.Delete(context.Background(), models.AllRecords()))
}

func (s *PostgresStoreSuite) TestInsertQueryRoundTrip() {
	ctx := context.Background()
	full := models.Record{
		Period:            "2025-02",
		StateCanonical:    "Bihar",
		DistrictClean:     "Patna",
		Pincode:           models.Ptr("800001"),
		AFICompositeScore: 142.5,
		EnrolTotal:        models.Ptr[int64](120),
		DemoTotal:         models.Ptr[int64](340),
		BioTotal:          models.Ptr[int64](560),
		AadhaarBase:       models.Ptr[int64](2_000_000),
		AgeMismatchScore:  models.Ptr(0.12),
		ClusterID:         models.Ptr(2),
		ClusterName:       models.Ptr("Biometric-Stress Districts"),
	}
	sparse := models.Record{Period: "2025-02", StateCanonical: "Goa", DistrictClean: "North Goa", AFICompositeScore: 12}

	s.Require().NoError(s.store.Insert(ctx, []models.Record{sparse, full}))

	got, err := s.store.Query(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)

	s.NotEmpty(got[0].ID)
	first := got[0]
	first.ID = ""
	s.Equal(full, first, "highest score first, optional fields preserved")

	s.Nil(got[1].Pincode)
	s.Nil(got[1].AadhaarBase)
	s.Nil(got[1].ClusterName)
}

func (s *PostgresStoreSuite) TestDeleteAll() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, []models.Record{
		{Period: "p", StateCanonical: "A", DistrictClean: "a", AFICompositeScore: 1},
		{Period: "p", StateCanonical: "B", DistrictClean: "b", AFICompositeScore: 2},
	}))

	s.Require().NoError(s.store.Delete(ctx, models.AllRecords()))

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Zero(n)
}
