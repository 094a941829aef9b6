package flow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tour-booking/internal/data/entity"
)

func TestTotalPrice(t *testing.T) {
	pkg := &entity.TourPackage{Price: decimal.RequireFromString("15999.00")}

	tests := []struct {
		name  string
		draft Draft
		want  string
	}{
		{
			name:  "base price times travelers",
			draft: Draft{Adults: 2},
			want:  "31998.00",
		},
		{
			name:  "insurance is per traveler",
			draft: Draft{Adults: 2, TravelInsurance: true},
			want:  "32998.00",
		},
		{
			name:  "children and infants count as travelers",
			draft: Draft{Adults: 2, Children: 1, Infants: 1},
			want:  "63996.00",
		},
		{
			name:  "photography is a flat fee",
			draft: Draft{Adults: 1, Photography: true},
			want:  "17499.00",
		},
		{
			name:  "private guide is a flat fee",
			draft: Draft{Adults: 1, PrivateGuide: true},
			want:  "18499.00",
		},
		{
			name:  "premium transportation adds a flat fee",
			draft: Draft{Adults: 1, Transportation: "premium"},
			want:  "17999.00",
		},
		{
			name:  "standard transportation adds nothing",
			draft: Draft{Adults: 1, Transportation: "standard"},
			want:  "15999.00",
		},
		{
			name: "everything combined",
			draft: Draft{
				Adults:          2,
				Children:        1,
				TravelInsurance: true,
				Photography:     true,
				PrivateGuide:    true,
				Transportation:  "premium",
			},
			want: "55497.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalPrice(pkg, &tt.draft)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"want %s, got %s", tt.want, got.StringFixed(2))
		})
	}
}

func TestTotalPriceIsExactDecimal(t *testing.T) {
	// 0.1 + 0.2 style prices must not drift the way floats do.
	pkg := &entity.TourPackage{Price: decimal.RequireFromString("1999.99")}
	draft := Draft{Adults: 3}

	got := TotalPrice(pkg, &draft)
	assert.Equal(t, "5999.97", got.StringFixed(2))
}
