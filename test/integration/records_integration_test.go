//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tablebase-io/tablebase/pkg/tablebase"
	"github.com/tablebase-io/tablebase/pkg/tbclient"
)

// RecordsIntegrationSuite exercises the record lifecycle against a live
// Tablebase base. It needs an API key plus a scratch base and table that the
// tests may freely write to.
type RecordsIntegrationSuite struct {
	suite.Suite

	records tablebase.RecordsClient
	ctx     context.Context
	marker  string
}

func (s *RecordsIntegrationSuite) SetupSuite() {
	apiKey := os.Getenv("TABLEBASE_API_KEY")
	baseID := os.Getenv("TABLEBASE_TEST_BASE")
	table := os.Getenv("TABLEBASE_TEST_TABLE")

	if apiKey == "" || baseID == "" || table == "" {
		s.T().Skip("TABLEBASE_API_KEY, TABLEBASE_TEST_BASE, and TABLEBASE_TEST_TABLE must be set, skipping integration tests")
	}

	client, err := tbclient.New(&tablebase.Config{APIKey: apiKey})
	require.NoError(s.T(), err)

	s.records = client.Records(baseID, table)
	s.ctx = context.Background()
	s.marker = fmt.Sprintf("integration-%d", time.Now().UnixNano())
}

func (s *RecordsIntegrationSuite) TestRecordLifecycle() {
	created, err := s.records.Create(s.ctx, tablebase.Fields{
		"Name":   s.marker,
		"Status": "Todo",
	}, nil)
	s.Require().NoError(err)
	s.Require().NotEmpty(created.ID)

	defer func() {
		_, _ = s.records.Destroy(s.ctx, created.ID)
	}()

	found, err := s.records.Find(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(s.marker, found.Get("Name"))

	updated, err := s.records.Update(s.ctx, created.ID, tablebase.Fields{"Status": "Done"}, nil)
	s.Require().NoError(err)
	s.Equal("Done", updated.Get("Status"))
	s.Equal(s.marker, updated.Get("Name"))

	replaced, err := s.records.Replace(s.ctx, created.ID, tablebase.Fields{"Name": s.marker}, nil)
	s.Require().NoError(err)
	s.Nil(replaced.Get("Status"))

	deleted, err := s.records.Destroy(s.ctx, created.ID)
	s.Require().NoError(err)
	s.True(deleted.Deleted)

	_, err = s.records.Find(s.ctx, created.ID)
	s.True(tablebase.IsNotFound(err))
}

func (s *RecordsIntegrationSuite) TestListPagination() {
	var createdIDs []string

	defer func() {
		for _, id := range createdIDs {
			_, _ = s.records.Destroy(s.ctx, id)
		}
	}()

	for i := 0; i < 3; i++ {
		record, err := s.records.Create(s.ctx, tablebase.Fields{
			"Name": fmt.Sprintf("%s-%d", s.marker, i),
		}, nil)
		s.Require().NoError(err)

		createdIDs = append(createdIDs, record.ID)
	}

	params := tablebase.NewListParams().
		WithFilterByFormula(fmt.Sprintf("FIND('%s', {Name})", s.marker)).
		WithPageSize(2)

	all, err := tablebase.FetchAllRecords(s.ctx, s.records, params)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func TestRecordsIntegration(t *testing.T) {
	suite.Run(t, new(RecordsIntegrationSuite))
}
