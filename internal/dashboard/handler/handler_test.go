package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"afi/internal/analytics"
	"afi/internal/dashboard/handler/mocks"
	"afi/internal/dashboard/service"
	dErrors "afi/pkg/domain-errors"
	"afi/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type DashboardHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestDashboardHandlerSuite(t *testing.T) {
	suite.Run(t, new(DashboardHandlerSuite))
}

func (s *DashboardHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *DashboardHandlerSuite) TestStates() {
	s.service.EXPECT().States(gomock.Any()).Return(&service.StatesView{
		Source: service.SourceDatabase,
		States: []analytics.StateSummary{{State: "B", MeanAFI: 100, DistrictCount: 1}},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/states"))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.JSONEq(`{"source":"database","states":[{"state":"B","meanAFI":100,"districtCount":1}]}`, rr.Body.String())
}

func (s *DashboardHandlerSuite) TestHotspots() {
	s.Run("limit omitted uses service default", func() {
		s.SetupTest()
		s.service.EXPECT().Hotspots(gomock.Any(), 0).Return(&service.HotspotsView{
			Source: service.SourceMock,
			Limit:  analytics.DefaultHotspotLimit,
			Hotspots: []service.HotspotEntry{{
				Hotspot:       analytics.Hotspot{State: "B", District: "b1", MeanAFI: 120, Observations: 2},
				FrictionLevel: analytics.FrictionHigh,
			}},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/hotspots"))

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal("mock", (*body)["source"])
		entry := (*body)["hotspots"].([]any)[0].(map[string]any)
		s.Equal("high", entry["frictionLevel"])
		s.Equal("b1", entry["district"])
	})

	s.Run("limit is passed through", func() {
		s.SetupTest()
		s.service.EXPECT().Hotspots(gomock.Any(), 25).Return(&service.HotspotsView{Limit: 25}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/hotspots?limit=25"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("non-numeric limit", func() {
		s.SetupTest()
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/hotspots?limit=ten"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("service range error", func() {
		s.SetupTest()
		s.service.EXPECT().Hotspots(gomock.Any(), 99).
			Return(nil, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 50"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/hotspots?limit=99"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func (s *DashboardHandlerSuite) TestInternalErrorHidesCause() {
	s.service.EXPECT().Overview(gomock.Any()).
		Return(nil, dErrors.Wrap(errors.New("pq: password authentication failed"), dErrors.CodeInternal, "failed to load dataset"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/overview"))

	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	s.NotContains(rr.Body.String(), "password")
	s.JSONEq(`{"error":"internal_error"}`, rr.Body.String())
}

func (s *DashboardHandlerSuite) TestRemainingViews() {
	s.service.EXPECT().Overview(gomock.Any()).Return(&service.Overview{Source: service.SourceDatabase}, nil)
	s.service.EXPECT().Typologies(gomock.Any()).Return(&service.TypologiesView{}, nil)
	s.service.EXPECT().Decomposition(gomock.Any()).Return(&service.DecompositionView{}, nil)
	s.service.EXPECT().Matrix(gomock.Any()).Return(&service.MatrixView{}, nil)

	for _, path := range []string{"/overview", "/typologies", "/decomposition", "/matrix"} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	}
}
