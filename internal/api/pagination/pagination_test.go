package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/mkarev/kulinaria/internal/config"
)

func TestParse(t *testing.T) {
	pageConf := config.Pagination{Style: config.PaginationPage, PageSize: 10, Limit: 100}
	offsetConf := config.Pagination{Style: config.PaginationLimitOffset, PageSize: 10, Limit: 100}

	tests := []struct {
		name string
		conf config.Pagination
		url  string
		want Params
	}{
		{
			name: "page style defaults",
			conf: pageConf,
			url:  "/api/recipes",
			want: Params{Limit: 10, Offset: 0},
		},
		{
			name: "page style second page",
			conf: pageConf,
			url:  "/api/recipes?page=2",
			want: Params{Limit: 10, Offset: 10},
		},
		{
			name: "page style custom limit",
			conf: pageConf,
			url:  "/api/recipes?page=3&limit=5",
			want: Params{Limit: 5, Offset: 10},
		},
		{
			name: "page style invalid page falls back",
			conf: pageConf,
			url:  "/api/recipes?page=zero",
			want: Params{Limit: 10, Offset: 0},
		},
		{
			name: "page style zero page falls back",
			conf: pageConf,
			url:  "/api/recipes?page=0",
			want: Params{Limit: 10, Offset: 0},
		},
		{
			name: "limit-offset defaults",
			conf: offsetConf,
			url:  "/api/recipes",
			want: Params{Limit: 100, Offset: 0},
		},
		{
			name: "limit-offset explicit",
			conf: offsetConf,
			url:  "/api/recipes?limit=20&offset=40",
			want: Params{Limit: 20, Offset: 40},
		},
		{
			name: "limit-offset negative offset falls back",
			conf: offsetConf,
			url:  "/api/recipes?offset=-5",
			want: Params{Limit: 100, Offset: 0},
		},
		{
			name: "limit-offset invalid limit falls back",
			conf: offsetConf,
			url:  "/api/recipes?limit=abc&offset=7",
			want: Params{Limit: 100, Offset: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			got := Parse(r, tt.conf)
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage[int](0, nil)
	if p.Results == nil {
		t.Error("expected empty slice, got nil")
	}
	if p.Count != 0 {
		t.Errorf("expected count 0, got %d", p.Count)
	}

	p2 := NewPage(3, []int{1, 2, 3})
	if len(p2.Results) != 3 || p2.Count != 3 {
		t.Errorf("unexpected page: %+v", p2)
	}
}
